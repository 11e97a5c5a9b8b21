/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/rgbpng/pkg/decoder"
	"github.com/ssargent/rgbpng/pkg/render"
)

// decodeOptions controls runDecode
type decodeOptions struct {
	Output   string
	Scale    int
	Format   render.Format
	MaxBytes int64
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a PNG file and render its pixels",
	Long: `Decode a PNG file, reconstruct its pixel grid and write it out as PNG
or BMP, optionally scaled up by an integer factor.

Run with --log-level debug to see the filter type of every row.

Examples:
  rgbpng decode image.png
  rgbpng decode image.png -o big.bmp --scale 8 --format bmp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		scale, _ := cmd.Flags().GetInt("scale")
		formatName, _ := cmd.Flags().GetString("format")

		if !cmd.Flags().Changed("scale") {
			scale = cfg.Render.Scale
		}
		if !cmd.Flags().Changed("format") {
			formatName = cfg.Render.Format
			if output != "" && filepath.Ext(output) != "" {
				formatName = strings.TrimPrefix(filepath.Ext(output), ".")
			}
		}
		format, err := render.ParseFormat(formatName)
		if err != nil {
			return err
		}

		dec := container.NewDecoder(cfg.Decode.MaxImageBytes)
		path, err := runDecode(logger, dec, args[0], decodeOptions{
			Output:   output,
			Scale:    scale,
			Format:   format,
			MaxBytes: cfg.Render.MaxOutputBytes,
		})
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("output", "o", "", "Output file (default: <input>.decoded.<format>)")
	decodeCmd.Flags().Int("scale", 1, "Integer scale factor")
	decodeCmd.Flags().String("format", "png", "Output format: png or bmp")
}

// runDecode decodes the file at input and writes the rendered image. It
// returns the path written.
func runDecode(log zerolog.Logger, dec *decoder.Decoder, input string, opts decodeOptions) (string, error) {
	img, err := dec.DecodeFile(input)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", input, err)
	}

	log.Info().
		Str("file", input).
		Int("width", img.Width).
		Int("height", img.Height).
		Int("records", len(img.Container.Records)).
		Msg("decoded")
	if log.GetLevel() <= zerolog.DebugLevel {
		for y, ft := range img.Grid.Filters {
			log.Debug().Int("row", y).Stringer("filter", ft).Msg("scanline")
		}
	}

	if err := render.CheckOutput(img.Width, img.Height, opts.Scale, opts.MaxBytes); err != nil {
		return "", err
	}

	output := opts.Output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".decoded" + opts.Format.Extension()
	}

	f, err := os.Create(output)
	if err != nil {
		return "", err
	}
	if err := render.Grid(f, img.Grid, opts.Scale, opts.Format, opts.MaxBytes); err != nil {
		f.Close()
		os.Remove(output)
		return "", fmt.Errorf("render %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	log.Info().Str("output", output).Int("scale", opts.Scale).Str("format", string(opts.Format)).Msg("rendered")
	return output, nil
}

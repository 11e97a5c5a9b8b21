/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/rgbpng/pkg/codec"
	"github.com/ssargent/rgbpng/pkg/decoder"
)

// inspectOptions controls runInspect
type inspectOptions struct {
	HexBytes int
	JSON     bool
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "List the chunks of a PNG file",
	Long: `List every chunk of a PNG file with its offset, length, checksum status
and decoded fields, followed by an image summary when the pixels decode.

Examples:
  rgbpng inspect image.png
  rgbpng inspect image.png --hex 16
  rgbpng inspect image.png --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexBytes, _ := cmd.Flags().GetInt("hex")
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		dec := container.NewDecoder(cfg.Decode.MaxImageBytes)
		return runInspect(cmd.OutOrStdout(), dec, data, inspectOptions{HexBytes: hexBytes, JSON: asJSON})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("hex", 0, "Show up to this many payload bytes of each chunk in hex")
	inspectCmd.Flags().Bool("json", false, "Print the listing as JSON")
}

// runInspect writes the chunk listing of data to w. A stream whose chunks
// parse but whose pixels do not decode is still listed; the decode error is
// reported after the listing.
func runInspect(w io.Writer, dec *decoder.Decoder, data []byte, opts inspectOptions) error {
	ct, err := dec.Parse(data)
	if err != nil {
		return err
	}
	infos := decoder.Describe(ct)
	img, decodeErr := dec.DecodeContainer(ct)

	if opts.JSON {
		out := struct {
			Records []decoder.RecordInfo `json:"records"`
			Summary *decoder.Summary     `json:"summary,omitempty"`
			Error   string               `json:"decode_error,omitempty"`
		}{Records: infos}
		if decodeErr != nil {
			out.Error = decodeErr.Error()
		} else {
			s := decoder.Summarize(img)
			out.Summary = &s
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tKIND\tLENGTH\tCRC\tFIELDS")
	for i, info := range infos {
		crc := "ok"
		if !info.CRCValid {
			crc = fmt.Sprintf("BAD (%08x)", info.CRC32)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", info.Offset, info.Kind, info.Length, crc, describeFields(ct.Records[i]))
		if opts.HexBytes > 0 && len(ct.Records[i].Payload) > 0 {
			fmt.Fprintf(tw, "\t\t\t\t%s\n", ct.Records[i].HexPreview(opts.HexBytes))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if ct.Trailing > 0 {
		fmt.Fprintf(w, "%d trailing bytes after IEND ignored\n", ct.Trailing)
	}

	if decodeErr != nil {
		fmt.Fprintf(w, "\nPixel data does not decode: %v\n", decodeErr)
		return nil
	}

	s := decoder.Summarize(img)
	fmt.Fprintf(w, "\n%dx%d RGB, %d IDAT chunk(s), %d compressed bytes\n", s.Width, s.Height, s.ImageDataCount, s.CompressedBytes)
	for _, name := range []string{"None", "Sub", "Up", "Average", "Paeth"} {
		if n := s.Filters[name]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d rows\n", name, n)
		}
	}
	return nil
}

func describeFields(rec *codec.Record) string {
	switch f := rec.Fields.(type) {
	case *codec.Header:
		return fmt.Sprintf("%dx%d depth=%d color=%d compression=%d filter=%d interlace=%d",
			f.Width, f.Height, f.BitDepth, f.ColorType, f.CompressionMethod, f.FilterMethod, f.InterlaceMethod)
	case *codec.RenderingIntent:
		return fmt.Sprintf("intent=%d", f.Intent)
	case *codec.PhysicalDimensions:
		s := fmt.Sprintf("ppu_x=%d ppu_y=%d unit=%d", f.PixelsPerUnitX, f.PixelsPerUnitY, f.Unit)
		if mm, ok := f.MillimetresPerPixel(); ok {
			s += fmt.Sprintf(" (1 pixel = %.4f mm)", mm)
		}
		return s
	case *codec.Gamma:
		return fmt.Sprintf("gamma=%.5f", f.Value())
	default:
		return ""
	}
}

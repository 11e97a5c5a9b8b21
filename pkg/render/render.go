// Package render turns a reconstructed pixel grid into an image.Image and
// writes it out, optionally scaled up.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/ssargent/rgbpng/pkg/scanline"
)

// MaxScale is the largest accepted scale factor
const MaxScale = 64

// MaxOutputBytes is the default bound on the RGBA buffer of a rendered image
const MaxOutputBytes int64 = 256 << 20

// ErrOutputTooLarge is returned when a rendered image would exceed its
// byte limit
var ErrOutputTooLarge = errors.New("render: output too large")

// OutputBytes returns the size of the RGBA buffer for a width x height
// image enlarged by factor.
func OutputBytes(width, height, factor int) int64 {
	return int64(width) * int64(factor) * int64(height) * int64(factor) * 4
}

// CheckOutput reports whether a width x height image can be rendered at
// factor within limit bytes. A limit of zero or less means MaxOutputBytes.
func CheckOutput(width, height, factor int, limit int64) error {
	if factor < 1 || factor > MaxScale {
		return fmt.Errorf("render: scale %d out of range 1..%d", factor, MaxScale)
	}
	if limit <= 0 {
		limit = MaxOutputBytes
	}
	// compare by division so huge dimensions cannot overflow the product
	w, h := int64(width)*int64(factor), int64(height)*int64(factor)
	if w > 0 && h > limit/4/w {
		return fmt.Errorf("%w: %dx%d at scale %d exceeds %d bytes",
			ErrOutputTooLarge, width, height, factor, limit)
	}
	return nil
}

// Format is an output image format
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat accepts "png" or "bmp" in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatBMP:
		return f, nil
	case "":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want png or bmp)", s)
	}
}

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	if f == FormatBMP {
		return "image/bmp"
	}
	return "image/png"
}

// Extension returns the file extension for f, including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ToRGBA copies a 3 bytes per pixel grid into an opaque RGBA image
func ToRGBA(g *scanline.Grid) (*image.RGBA, error) {
	if g.BytesPerPixel != 3 {
		return nil, fmt.Errorf("render: %d bytes per pixel is not RGB", g.BytesPerPixel)
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height()))
	for y, row := range g.Rows {
		if len(row) != g.Width*3 {
			return nil, fmt.Errorf("render: row %d has %d bytes, want %d", y, len(row), g.Width*3)
		}
		out := img.Pix[y*img.Stride : y*img.Stride+g.Width*4]
		for x := 0; x < g.Width; x++ {
			out[x*4] = row[x*3]
			out[x*4+1] = row[x*3+1]
			out[x*4+2] = row[x*3+2]
			out[x*4+3] = 0xFF
		}
	}
	return img, nil
}

// Scale enlarges src by an integer factor using nearest neighbour sampling,
// so each source pixel becomes a factor x factor block. The result must fit
// in limit bytes, see CheckOutput.
func Scale(src image.Image, factor int, limit int64) (*image.RGBA, error) {
	b := src.Bounds()
	if err := CheckOutput(b.Dx(), b.Dy(), factor, limit); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	if factor == 1 {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, nil
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("render: unknown format %q", f)
	}
}

// Grid renders g at the given scale and writes it to w. Nothing is
// allocated when the output would exceed limit bytes.
func Grid(w io.Writer, g *scanline.Grid, scale int, f Format, limit int64) error {
	if err := CheckOutput(g.Width, g.Height(), scale, limit); err != nil {
		return err
	}
	img, err := ToRGBA(g)
	if err != nil {
		return err
	}
	scaled, err := Scale(img, scale, limit)
	if err != nil {
		return err
	}
	return Encode(w, scaled, f)
}

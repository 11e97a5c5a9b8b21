// Package decoder runs the full decode pipeline: signature check, record
// parsing, decompression and scanline reconstruction.
package decoder

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/rgbpng/pkg/codec"
	"github.com/ssargent/rgbpng/pkg/container"
	"github.com/ssargent/rgbpng/pkg/inflate"
	"github.com/ssargent/rgbpng/pkg/pngerr"
	"github.com/ssargent/rgbpng/pkg/scanline"
)

// Signature is the fixed 8 byte prefix of every PNG stream
const Signature = "\x89PNG\r\n\x1a\n"

// DefaultMaxImageBytes bounds width*height*bytesPerPixel
const DefaultMaxImageBytes = 256 << 20

// Image is a fully decoded image
type Image struct {
	Width     int
	Height    int
	Header    codec.Header
	Grid      *scanline.Grid
	Container *container.Container
}

// Decoder decodes 8-bit truecolor, non-interlaced PNG streams.
// A Decoder holds no per-image state and is safe for concurrent use.
type Decoder struct {
	decompressor  inflate.Decompressor
	maxImageBytes int64
}

// Option configures a Decoder
type Option func(*Decoder)

// WithDecompressor replaces the built-in zlib decompressor
func WithDecompressor(d inflate.Decompressor) Option {
	return func(dec *Decoder) {
		dec.decompressor = d
	}
}

// WithMaxImageBytes caps the reconstructed pixel data size
func WithMaxImageBytes(n int64) Option {
	return func(dec *Decoder) {
		if n > 0 {
			dec.maxImageBytes = n
		}
	}
}

// New creates a decoder
func New(opts ...Option) *Decoder {
	d := &Decoder{maxImageBytes: DefaultMaxImageBytes}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile reads and decodes the PNG file at path
func (d *Decoder) DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return d.DecodeBytes(data)
}

// Decode reads r to the end and decodes it
func (d *Decoder) Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.DecodeBytes(data)
}

// DecodeBytes checks the signature and decodes the record stream after it
func (d *Decoder) DecodeBytes(data []byte) (*Image, error) {
	stream, err := stripSignature(data)
	if err != nil {
		return nil, err
	}
	return d.DecodeStream(stream)
}

// Parse checks the signature and assembles the records without decoding
// any pixel data.
func (d *Decoder) Parse(data []byte) (*container.Container, error) {
	stream, err := stripSignature(data)
	if err != nil {
		return nil, err
	}
	return container.Parse(stream)
}

// DecodeStream decodes a record stream that has already had its signature
// removed.
func (d *Decoder) DecodeStream(stream []byte) (*Image, error) {
	ct, err := container.Parse(stream)
	if err != nil {
		return nil, err
	}
	return d.DecodeContainer(ct)
}

// DecodeContainer decompresses and reconstructs the pixels of ct
func (d *Decoder) DecodeContainer(ct *container.Container) (*Image, error) {
	h, err := ct.Geometry()
	if err != nil {
		return nil, err
	}
	bpp, err := BytesPerPixel(h)
	if err != nil {
		return nil, err
	}
	if err := validateHeader(h); err != nil {
		return nil, err
	}

	width, height := int(h.Width), int(h.Height)
	if pixels := int64(width) * int64(height) * int64(bpp); pixels > d.maxImageBytes {
		return nil, fmt.Errorf("%w: %dx%d image needs %d bytes, limit is %d",
			pngerr.ErrUnsupported, width, height, pixels, d.maxImageBytes)
	}
	expected := int64(height) * int64(scanline.Stride(width, bpp))

	compressed, err := ct.ImageData()
	if err != nil {
		return nil, err
	}

	dec := d.decompressor
	if dec == nil {
		dec = inflate.NewZlib(expected)
	}
	raw, err := dec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if int64(len(raw)) > expected {
		return nil, fmt.Errorf("%w: %d bytes of pixel data, expected %d", pngerr.ErrCorruptStream, len(raw), expected)
	}

	grid, err := scanline.Reconstruct(raw, width, bpp)
	if err != nil {
		return nil, err
	}
	if grid.Height() < height {
		return nil, fmt.Errorf("%w: got %d rows, header says %d", pngerr.ErrTruncatedImageData, grid.Height(), height)
	}

	return &Image{
		Width:     width,
		Height:    height,
		Header:    h,
		Grid:      grid,
		Container: ct,
	}, nil
}

// BytesPerPixel derives the pixel size from the colour type and bit depth.
// Only 8-bit truecolor is supported.
func BytesPerPixel(h codec.Header) (int, error) {
	if h.ColorType == codec.ColorTrueColor && h.BitDepth == 8 {
		return 3, nil
	}
	return 0, fmt.Errorf("%w: color type %d with bit depth %d", pngerr.ErrUnsupported, h.ColorType, h.BitDepth)
}

func validateHeader(h codec.Header) error {
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: zero image dimension %dx%d", pngerr.ErrMalformedRecord, h.Width, h.Height)
	}
	// PNG four-byte integers are limited to 2^31-1
	if h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return fmt.Errorf("%w: image dimension %dx%d out of range", pngerr.ErrMalformedRecord, h.Width, h.Height)
	}
	if h.CompressionMethod != 0 {
		return fmt.Errorf("%w: compression method %d", pngerr.ErrUnsupported, h.CompressionMethod)
	}
	if h.FilterMethod != 0 {
		return fmt.Errorf("%w: filter method %d", pngerr.ErrUnsupported, h.FilterMethod)
	}
	if h.InterlaceMethod != 0 {
		return fmt.Errorf("%w: interlace method %d", pngerr.ErrUnsupported, h.InterlaceMethod)
	}
	return nil
}

func stripSignature(data []byte) ([]byte, error) {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], []byte(Signature)) {
		return nil, pngerr.ErrBadSignature
	}
	return data[len(Signature):], nil
}

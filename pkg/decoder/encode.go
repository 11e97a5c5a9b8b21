package decoder

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/ssargent/rgbpng/pkg/codec"
	"github.com/ssargent/rgbpng/pkg/inflate"
	"github.com/ssargent/rgbpng/pkg/scanline"
)

// EncodeOptions controls Encode
type EncodeOptions struct {
	Picker    scanline.Picker // Row filter choice; defaults to scanline.Adaptive
	Level     int             // zlib level; defaults to zlib.DefaultCompression
	ChunkSize int             // Max IDAT payload per record; 0 writes a single IDAT
	Extra     [][]byte        // Encoded records written between IHDR and IDAT
}

// Encode writes g as an 8-bit truecolor PNG stream
func Encode(w io.Writer, g *scanline.Grid, opts EncodeOptions) error {
	if g.BytesPerPixel != 3 {
		return fmt.Errorf("encode: %d bytes per pixel is not truecolor", g.BytesPerPixel)
	}
	if g.Width <= 0 || g.Height() == 0 {
		return fmt.Errorf("encode: empty %dx%d image", g.Width, g.Height())
	}
	for y, row := range g.Rows {
		if len(row) != g.Width*3 {
			return fmt.Errorf("encode: row %d has %d bytes, want %d", y, len(row), g.Width*3)
		}
	}

	pick := opts.Picker
	if pick == nil {
		pick = scanline.Adaptive
	}
	level := opts.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}

	filtered, err := scanline.Filter(g.Rows, 3, pick)
	if err != nil {
		return err
	}
	compressed, err := inflate.Compress(filtered, level)
	if err != nil {
		return err
	}

	h := codec.Header{
		Width:     uint32(g.Width),
		Height:    uint32(g.Height()),
		BitDepth:  8,
		ColorType: codec.ColorTrueColor,
	}

	if _, err := io.WriteString(w, Signature); err != nil {
		return err
	}
	if err := writeRecord(w, codec.KindHeader, h.Bytes()); err != nil {
		return err
	}
	for _, rec := range opts.Extra {
		if _, err := w.Write(rec); err != nil {
			return err
		}
	}
	for _, part := range split(compressed, opts.ChunkSize) {
		if err := writeRecord(w, codec.KindImageData, part); err != nil {
			return err
		}
	}
	return writeRecord(w, codec.KindEnd, nil)
}

func writeRecord(w io.Writer, kind codec.Kind, payload []byte) error {
	b, err := codec.Encode(kind, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// NewGrid wraps row-major RGB bytes in a Grid
func NewGrid(width, height int, pix []byte) (*scanline.Grid, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*3 {
		return nil, fmt.Errorf("grid: %d bytes do not describe a %dx%d RGB image", len(pix), width, height)
	}
	g := &scanline.Grid{
		Width:         width,
		BytesPerPixel: 3,
		Rows:          make([][]byte, height),
		Filters:       make([]scanline.FilterType, height),
	}
	for y := range g.Rows {
		g.Rows[y] = pix[y*width*3 : (y+1)*width*3]
	}
	return g, nil
}

func split(data []byte, size int) [][]byte {
	if size <= 0 || len(data) <= size {
		return [][]byte{data}
	}
	var parts [][]byte
	for len(data) > size {
		parts = append(parts, data[:size])
		data = data[size:]
	}
	return append(parts, data)
}

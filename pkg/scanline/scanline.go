// Package scanline reverses (and applies) the per-row PNG filters.
//
// A filtered stream is a run of rows of width*bpp+1 bytes. The first byte of
// each row names the filter; the rest are channel bytes expressed as a
// difference from a predictor built from the pixel to the left (a), the
// pixel above (b) and the pixel above-left (c). All arithmetic is mod 256.
package scanline

import (
	"fmt"

	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// FilterType is the per-row filter tag
type FilterType uint8

// Filter types defined by PNG
const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

var filterNames = [...]string{"None", "Sub", "Up", "Average", "Paeth"}

func (f FilterType) String() string {
	if f.Valid() {
		return filterNames[f]
	}
	return fmt.Sprintf("FilterType(%d)", uint8(f))
}

// Valid reports whether f is one of the five defined filters
func (f FilterType) Valid() bool {
	return f <= FilterPaeth
}

// Grid is a reconstructed pixel grid. Each row holds Width*BytesPerPixel
// channel bytes; Filters records the filter each row was encoded with.
type Grid struct {
	Width         int
	BytesPerPixel int
	Rows          [][]byte
	Filters       []FilterType
}

// Height returns the number of rows
func (g *Grid) Height() int {
	return len(g.Rows)
}

// Pixel returns the channel bytes of the pixel at (x, y)
func (g *Grid) Pixel(x, y int) []byte {
	off := x * g.BytesPerPixel
	return g.Rows[y][off : off+g.BytesPerPixel]
}

// Stride is the length of one filtered row including its filter byte
func Stride(width, bpp int) int {
	return width*bpp + 1
}

// Reconstruct slices data into rows and reverses each row's filter, top to
// bottom. data is not modified. A length that is not a whole number of rows
// is ErrTruncatedImageData; an unknown filter tag is ErrMalformedRecord.
func Reconstruct(data []byte, width, bpp int) (*Grid, error) {
	if width < 0 || bpp < 1 {
		return nil, fmt.Errorf("%w: invalid geometry width=%d bpp=%d", pngerr.ErrMalformedRecord, width, bpp)
	}

	stride := Stride(width, bpp)
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d byte row stride (last row has %d bytes)",
			pngerr.ErrTruncatedImageData, len(data), stride, len(data)%stride)
	}

	height := len(data) / stride
	rowLen := stride - 1
	pix := make([]byte, height*rowLen)
	g := &Grid{
		Width:         width,
		BytesPerPixel: bpp,
		Rows:          make([][]byte, height),
		Filters:       make([]FilterType, height),
	}

	// prev is nil for the first row, which makes b and c zero.
	var prev []byte
	for y := 0; y < height; y++ {
		src := data[y*stride : (y+1)*stride]
		cur := pix[y*rowLen : (y+1)*rowLen : (y+1)*rowLen]
		copy(cur, src[1:])

		ft := FilterType(src[0])
		if err := unfilter(ft, cur, prev, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}

		g.Rows[y] = cur
		g.Filters[y] = ft
		prev = cur
	}

	return g, nil
}

// unfilter reverses ft on cur in place. cur[i-bpp] has already been
// reconstructed when cur[i] is visited.
func unfilter(ft FilterType, cur, prev []byte, bpp int) error {
	switch ft {
	case FilterNone:
		// No-op.
	case FilterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case FilterUp:
		if prev == nil {
			return nil
		}
		for i, b := range prev {
			cur[i] += b
		}
	case FilterAverage:
		for i := range cur {
			var a, b int
			if i >= bpp {
				a = int(cur[i-bpp])
			}
			if prev != nil {
				b = int(prev[i])
			}
			cur[i] += uint8((a + b) / 2)
		}
	case FilterPaeth:
		for i := range cur {
			var a, b, c uint8
			if i >= bpp {
				a = cur[i-bpp]
			}
			if prev != nil {
				b = prev[i]
				if i >= bpp {
					c = prev[i-bpp]
				}
			}
			cur[i] += Paeth(a, b, c)
		}
	default:
		return fmt.Errorf("%w: unknown filter type %d", pngerr.ErrMalformedRecord, uint8(ft))
	}
	return nil
}

// Paeth returns whichever of a, b and c is closest to a+b-c, preferring a,
// then b, then c on ties.
func Paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package scanline

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/ssargent/rgbpng/pkg/pngerr"
)

func TestReconstruct_SubExample(t *testing.T) {
	data := []byte{
		0, 10, 20, 30, 40, 50, 60,
		1, 5, 5, 5, 5, 5, 5,
	}

	g, err := Reconstruct(data, 2, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if g.Height() != 2 {
		t.Fatalf("Height = %d, want 2", g.Height())
	}
	if want := []byte{10, 20, 30, 40, 50, 60}; !bytes.Equal(g.Rows[0], want) {
		t.Errorf("row 0 = %v, want %v", g.Rows[0], want)
	}
	if want := []byte{5, 5, 5, 10, 10, 10}; !bytes.Equal(g.Rows[1], want) {
		t.Errorf("row 1 = %v, want %v", g.Rows[1], want)
	}
	if g.Filters[0] != FilterNone || g.Filters[1] != FilterSub {
		t.Errorf("Filters = %v, want [None Sub]", g.Filters)
	}
	if px := g.Pixel(1, 1); !bytes.Equal(px, []byte{10, 10, 10}) {
		t.Errorf("Pixel(1,1) = %v", px)
	}
}

func TestReconstruct_EachFilter(t *testing.T) {
	// Row 0 is None so that row 1 has a known previous row.
	prevRow := []byte{100, 110, 120, 200, 210, 220}

	tests := []struct {
		name string
		row1 []byte
		want []byte
	}{
		{
			name: "None",
			row1: []byte{0, 1, 2, 3, 4, 5, 6},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "Sub wraps mod 256",
			row1: []byte{1, 250, 250, 250, 10, 10, 10},
			want: []byte{250, 250, 250, 4, 4, 4},
		},
		{
			name: "Up",
			row1: []byte{2, 1, 1, 1, 100, 100, 100},
			want: []byte{101, 111, 121, 44, 54, 64},
		},
		{
			// first pixel: a=0 so value + b/2; second: floor((a+b)/2)
			name: "Average",
			row1: []byte{3, 0, 0, 0, 0, 0, 0},
			want: []byte{50, 55, 60, 125, 132, 140},
		},
		{
			// first pixel: a=c=0, p=b so Paeth picks b.
			// second pixel: a=101,b=200,c=100 -> p=201, picks b=200.
			name: "Paeth",
			row1: []byte{4, 1, 1, 1, 1, 1, 1},
			want: []byte{101, 111, 121, 201, 211, 221},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte{0}, prevRow...)
			data = append(data, tt.row1...)

			g, err := Reconstruct(data, 2, 3)
			if err != nil {
				t.Fatalf("Reconstruct failed: %v", err)
			}
			if !bytes.Equal(g.Rows[1], tt.want) {
				t.Errorf("row 1 = %v, want %v", g.Rows[1], tt.want)
			}
		})
	}
}

func TestReconstruct_FirstRowBoundaries(t *testing.T) {
	body := []byte{7, 8, 9, 17, 18, 19}

	t.Run("Up on row 0 is identity", func(t *testing.T) {
		g, err := Reconstruct(append([]byte{byte(FilterUp)}, body...), 2, 3)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		if !bytes.Equal(g.Rows[0], body) {
			t.Errorf("row 0 = %v, want %v", g.Rows[0], body)
		}
	})

	t.Run("Average on row 0 uses only a", func(t *testing.T) {
		g, err := Reconstruct(append([]byte{byte(FilterAverage)}, body...), 2, 3)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		want := []byte{7, 8, 9, 17 + 3, 18 + 4, 19 + 4}
		if !bytes.Equal(g.Rows[0], want) {
			t.Errorf("row 0 = %v, want %v", g.Rows[0], want)
		}
	})

	t.Run("Paeth on row 0 behaves like Sub", func(t *testing.T) {
		paeth, err := Reconstruct(append([]byte{byte(FilterPaeth)}, body...), 2, 3)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		sub, err := Reconstruct(append([]byte{byte(FilterSub)}, body...), 2, 3)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		if !bytes.Equal(paeth.Rows[0], sub.Rows[0]) {
			t.Errorf("Paeth row 0 = %v, Sub row 0 = %v", paeth.Rows[0], sub.Rows[0])
		}
	})
}

func TestReconstruct_DoesNotModifyInput(t *testing.T) {
	data := []byte{1, 5, 5, 5, 5, 5, 5}
	orig := append([]byte(nil), data...)

	if _, err := Reconstruct(data, 2, 3); err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Errorf("input modified: %v", data)
	}
}

func TestReconstruct_NoneIsIdempotent(t *testing.T) {
	g, err := Reconstruct([]byte{0, 1, 2, 3}, 1, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	again, err := Reconstruct(append([]byte{0}, g.Rows[0]...), 1, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !bytes.Equal(again.Rows[0], g.Rows[0]) {
		t.Errorf("defiltering twice with None changed the row: %v", again.Rows[0])
	}
}

func TestReconstruct_Truncated(t *testing.T) {
	width := 4
	stride := Stride(width, 3)

	tests := []struct {
		name string
		n    int
	}{
		{"one byte short of one row", stride - 1},
		{"one byte past a row", stride + 1},
		{"one byte short of two rows", 2*stride - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(make([]byte, tt.n), width, 3)
			if !errors.Is(err, pngerr.ErrTruncatedImageData) {
				t.Errorf("expected ErrTruncatedImageData, got %v", err)
			}
		})
	}
}

func TestReconstruct_UnknownFilter(t *testing.T) {
	for _, tag := range []byte{5, 6, 0x80, 0xFF} {
		data := []byte{0, 1, 2, 3, tag, 1, 2, 3}
		_, err := Reconstruct(data, 1, 3)
		if !errors.Is(err, pngerr.ErrMalformedRecord) {
			t.Errorf("tag %d: expected ErrMalformedRecord, got %v", tag, err)
		}
	}
}

func TestReconstruct_InvalidGeometry(t *testing.T) {
	if _, err := Reconstruct(nil, -1, 3); !errors.Is(err, pngerr.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord for negative width, got %v", err)
	}
	if _, err := Reconstruct(nil, 1, 0); !errors.Is(err, pngerr.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord for zero bpp, got %v", err)
	}
}

func TestReconstruct_Empty(t *testing.T) {
	g, err := Reconstruct([]byte{}, 3, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if g.Height() != 0 {
		t.Errorf("Height = %d, want 0", g.Height())
	}
}

func TestPaeth(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint8
		want    uint8
	}{
		{"all equal", 42, 42, 42, 42},
		{"all zero", 0, 0, 0, 0},
		{"tie a and b prefers a", 10, 10, 0, 10},
		{"tie b and c prefers b", 15, 0, 10, 0},
		{"a closest on descending gradient", 10, 20, 30, 10},
		{"b closest", 100, 200, 100, 200},
		{"a closest", 200, 100, 100, 200},
		{"c closest", 50, 60, 55, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Paeth(tt.a, tt.b, tt.c); got != tt.want {
				t.Errorf("Paeth(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
			}
		})
	}
}

func TestPaeth_TieBreaking(t *testing.T) {
	// Brute force: the result must be the first of a, b, c with minimal distance.
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 13 {
			for c := 0; c < 256; c += 11 {
				p := a + b - c
				cands := []int{a, b, c}
				best := 0
				for i := 1; i < 3; i++ {
					if abs(p-cands[i]) < abs(p-cands[best]) {
						best = i
					}
				}
				if got := Paeth(uint8(a), uint8(b), uint8(c)); int(got) != cands[best] {
					t.Fatalf("Paeth(%d, %d, %d) = %d, want %d", a, b, c, got, cands[best])
				}
			}
		}
	}
}

func TestFilterType_String(t *testing.T) {
	if FilterAverage.String() != "Average" {
		t.Errorf("String = %q", FilterAverage.String())
	}
	if FilterType(9).String() != "FilterType(9)" {
		t.Errorf("String = %q", FilterType(9).String())
	}
	if FilterType(5).Valid() {
		t.Error("filter 5 reported valid")
	}
}

func TestFilter_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	width, height, bpp := 7, 5, 3

	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, width*bpp)
		rng.Read(rows[y])
	}

	pickers := map[string]Picker{
		"None":     Fixed(FilterNone),
		"Sub":      Fixed(FilterSub),
		"Up":       Fixed(FilterUp),
		"Average":  Fixed(FilterAverage),
		"Paeth":    Fixed(FilterPaeth),
		"Adaptive": Adaptive,
		"Cycle": func(y int, _, _ []byte, _ int) FilterType {
			return FilterType(y % 5)
		},
	}

	for name, pick := range pickers {
		t.Run(name, func(t *testing.T) {
			filtered, err := Filter(rows, bpp, pick)
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if len(filtered) != height*Stride(width, bpp) {
				t.Fatalf("filtered length %d, want %d", len(filtered), height*Stride(width, bpp))
			}

			g, err := Reconstruct(filtered, width, bpp)
			if err != nil {
				t.Fatalf("Reconstruct failed: %v", err)
			}
			for y := range rows {
				if !bytes.Equal(g.Rows[y], rows[y]) {
					t.Errorf("row %d mismatch (filter %v)", y, g.Filters[y])
				}
			}
		})
	}
}

func TestFilter_NoneReproducesLayout(t *testing.T) {
	data := []byte{0, 10, 20, 30, 40, 50, 60, 0, 1, 2, 3, 4, 5, 6}
	g, err := Reconstruct(data, 2, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	out, err := Filter(g.Rows, 3, Fixed(FilterNone))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Filter(None) = %v, want %v", out, data)
	}
}

func TestFilter_Errors(t *testing.T) {
	if _, err := Filter([][]byte{{1, 2, 3}}, 0, Fixed(FilterNone)); err == nil {
		t.Error("expected error for zero bpp")
	}
	if _, err := Filter([][]byte{{1, 2}}, 3, Fixed(FilterNone)); err == nil {
		t.Error("expected error for partial pixel")
	}
	if _, err := Filter([][]byte{{1, 2, 3}, {1}}, 3, Fixed(FilterNone)); err == nil {
		t.Error("expected error for ragged rows")
	}
	if _, err := Filter([][]byte{{1, 2, 3}}, 3, Fixed(FilterType(7))); err == nil {
		t.Error("expected error for invalid filter")
	}
	out, err := Filter(nil, 3, Fixed(FilterNone))
	if err != nil || len(out) != 0 {
		t.Errorf("Filter(nil) = %v, %v", out, err)
	}
}

func TestAdaptive_PrefersSmallResiduals(t *testing.T) {
	// A constant row is all zeros under Sub after the first pixel, and
	// identical to the previous row under Up.
	prev := []byte{9, 9, 9, 9, 9, 9}
	row := []byte{9, 9, 9, 9, 9, 9}

	if ft := Adaptive(1, row, prev, 3); ft != FilterUp {
		t.Errorf("Adaptive = %v, want Up", ft)
	}
	if ft := Adaptive(0, []byte{0, 0, 0, 0, 0, 0}, nil, 3); ft != FilterNone {
		t.Errorf("Adaptive on zero row = %v, want None", ft)
	}
}

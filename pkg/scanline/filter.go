package scanline

import "fmt"

// Picker chooses the filter for row y given the unfiltered row and the
// unfiltered row above it (nil for the first row).
type Picker func(y int, row, prev []byte, bpp int) FilterType

// Fixed returns a Picker that uses ft for every row
func Fixed(ft FilterType) Picker {
	return func(int, []byte, []byte, int) FilterType {
		return ft
	}
}

// Adaptive picks, per row, the filter whose output has the smallest sum of
// absolute values when read as signed bytes.
func Adaptive(_ int, row, prev []byte, bpp int) FilterType {
	best, bestScore := FilterNone, -1
	scratch := make([]byte, len(row))
	for ft := FilterNone; ft <= FilterPaeth; ft++ {
		filterRow(ft, scratch, row, prev, bpp)
		score := 0
		for _, v := range scratch {
			score += abs(int(int8(v)))
		}
		if bestScore < 0 || score < bestScore {
			best, bestScore = ft, score
		}
	}
	return best
}

// Filter encodes rows into a filtered stream, one filter byte per row.
// Every row must hold the same number of bytes, a multiple of bpp.
func Filter(rows [][]byte, bpp int, pick Picker) ([]byte, error) {
	if bpp < 1 {
		return nil, fmt.Errorf("scanline: invalid bytes per pixel %d", bpp)
	}
	if len(rows) == 0 {
		return []byte{}, nil
	}

	rowLen := len(rows[0])
	if rowLen%bpp != 0 {
		return nil, fmt.Errorf("scanline: row length %d is not a multiple of %d", rowLen, bpp)
	}

	out := make([]byte, 0, len(rows)*(rowLen+1))
	var prev []byte
	for y, row := range rows {
		if len(row) != rowLen {
			return nil, fmt.Errorf("scanline: row %d has %d bytes, want %d", y, len(row), rowLen)
		}
		ft := pick(y, row, prev, bpp)
		if !ft.Valid() {
			return nil, fmt.Errorf("scanline: row %d: invalid filter %v", y, ft)
		}

		out = append(out, byte(ft))
		start := len(out)
		out = append(out, row...)
		filterRow(ft, out[start:], row, prev, bpp)
		prev = row
	}
	return out, nil
}

// filterRow writes row minus its predictor into dst
func filterRow(ft FilterType, dst, row, prev []byte, bpp int) {
	for i, v := range row {
		var a, b, c uint8
		if i >= bpp {
			a = row[i-bpp]
		}
		if prev != nil {
			b = prev[i]
			if i >= bpp {
				c = prev[i-bpp]
			}
		}

		switch ft {
		case FilterNone:
			dst[i] = v
		case FilterSub:
			dst[i] = v - a
		case FilterUp:
			dst[i] = v - b
		case FilterAverage:
			dst[i] = v - uint8((int(a)+int(b))/2)
		case FilterPaeth:
			dst[i] = v - Paeth(a, b, c)
		}
	}
}

// Package inflate decompresses the zlib stream carried by IDAT records.
package inflate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// Decompressor turns the concatenated IDAT payload into filtered scanlines
type Decompressor interface {
	Decompress(src []byte) ([]byte, error)
}

// Zlib decompresses RFC 1950 streams
type Zlib struct {
	// Limit caps the decompressed size in bytes; 0 means no limit.
	Limit int64
}

// NewZlib creates a zlib decompressor with the given output limit
func NewZlib(limit int64) *Zlib {
	return &Zlib{Limit: limit}
}

// Decompress inflates src. Any malformed input, checksum failure or
// overrun of Limit is reported as ErrCorruptStream.
func (z *Zlib) Decompress(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pngerr.ErrCorruptStream, err)
	}
	defer r.Close()

	var reader io.Reader = r
	if z.Limit > 0 {
		// One extra byte distinguishes "exactly Limit" from "more than Limit".
		reader = io.LimitReader(r, z.Limit+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("%w: %v", pngerr.ErrCorruptStream, err)
	}
	if z.Limit > 0 && int64(buf.Len()) > z.Limit {
		return nil, fmt.Errorf("%w: decompressed data exceeds %d bytes", pngerr.ErrCorruptStream, z.Limit)
	}
	return buf.Bytes(), nil
}

// Compress deflates data into a zlib stream at the given level
// (zlib.NoCompression through zlib.BestCompression, or zlib.DefaultCompression).
func Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package container assembles the records of a PNG stream into an image
// description: records in stream order, hoisted geometry and the
// concatenated compressed pixel data.
package container

import (
	"fmt"

	"github.com/ssargent/rgbpng/pkg/codec"
	"github.com/ssargent/rgbpng/pkg/cursor"
	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// Container is the ordered set of records read up to and including IEND
type Container struct {
	Records []*codec.Record

	// header is the first IHDR seen; later IHDR records are kept in
	// Records but do not change the geometry.
	header *codec.Header

	// dataBeforeHeader is set when an IDAT preceded the first IHDR.
	dataBeforeHeader bool

	// Trailing is the number of bytes after IEND that were not parsed
	Trailing int
}

// Parse reads records from data (the stream after the signature) until a
// terminator record has been read. Bytes after the terminator are ignored.
func Parse(data []byte) (*Container, error) {
	c := cursor.New(data)
	ct := &Container{}

	for {
		rec, err := codec.ParseRecord(c)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(ct.Records), err)
		}
		ct.Records = append(ct.Records, rec)

		switch rec.Kind {
		case codec.KindHeader:
			if ct.header == nil {
				h, _ := rec.Header()
				hc := *h
				ct.header = &hc
			}
		case codec.KindImageData:
			if ct.header == nil {
				ct.dataBeforeHeader = true
			}
		}

		if rec.Kind == codec.KindEnd {
			break
		}
	}

	ct.Trailing = c.Remaining()
	return ct, nil
}

// Geometry returns the fields of the first header record
func (ct *Container) Geometry() (codec.Header, error) {
	if err := ct.checkHeader(); err != nil {
		return codec.Header{}, err
	}
	return *ct.header, nil
}

// ImageData concatenates the payload of every IDAT record in stream order
func (ct *Container) ImageData() ([]byte, error) {
	if err := ct.checkHeader(); err != nil {
		return nil, err
	}

	n := 0
	for _, rec := range ct.Records {
		if rec.Kind == codec.KindImageData {
			n += len(rec.Payload)
		}
	}
	data := make([]byte, 0, n)
	for _, rec := range ct.Records {
		if rec.Kind == codec.KindImageData {
			data = append(data, rec.Payload...)
		}
	}
	return data, nil
}

// First returns the first record of the given kind, or nil
func (ct *Container) First(kind codec.Kind) *codec.Record {
	for _, rec := range ct.Records {
		if rec.Kind == kind {
			return rec
		}
	}
	return nil
}

// All returns every record of the given kind in stream order
func (ct *Container) All(kind codec.Kind) []*codec.Record {
	var out []*codec.Record
	for _, rec := range ct.Records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

func (ct *Container) checkHeader() error {
	if ct.header == nil {
		return fmt.Errorf("%w: no IHDR record in %d records", pngerr.ErrMissingHeader, len(ct.Records))
	}
	if ct.dataBeforeHeader {
		return fmt.Errorf("%w: IDAT record precedes IHDR", pngerr.ErrMissingHeader)
	}
	return nil
}

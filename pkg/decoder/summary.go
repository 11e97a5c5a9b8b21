package decoder

import (
	"github.com/ssargent/rgbpng/pkg/codec"
	"github.com/ssargent/rgbpng/pkg/container"
)

// RecordInfo describes one record for listings
type RecordInfo struct {
	Offset   int         `json:"offset"`
	Kind     codec.Kind  `json:"kind"`
	Length   uint32      `json:"length"`
	CRC32    uint32      `json:"crc32"`
	CRCValid bool        `json:"crc_valid"`
	Fields   interface{} `json:"fields,omitempty"`
}

// Summary is the metadata view of a decoded image
type Summary struct {
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	Header          codec.Header   `json:"header"`
	Records         []RecordInfo   `json:"records"`
	ImageDataCount  int            `json:"image_data_records"`
	CompressedBytes int            `json:"compressed_bytes"`
	Filters         map[string]int `json:"filters"`
	Gamma           *float64       `json:"gamma,omitempty"`
	MMPerPixel      *float64       `json:"mm_per_pixel,omitempty"`
	TrailingBytes   int            `json:"trailing_bytes,omitempty"`
}

// Describe lists the records of ct with their checksum status. Offsets are
// relative to the start of the signature.
func Describe(ct *container.Container) []RecordInfo {
	infos := make([]RecordInfo, 0, len(ct.Records))
	offset := len(Signature)
	for _, rec := range ct.Records {
		info := RecordInfo{
			Offset:   offset,
			Kind:     rec.Kind,
			Length:   rec.Length,
			CRC32:    rec.CRC32,
			CRCValid: rec.Validate() == nil,
		}
		if rec.Fields != nil {
			info.Fields = rec.Fields
		}
		infos = append(infos, info)
		offset += rec.Size()
	}
	return infos
}

// Summarize collects the metadata of img, including how often each row
// filter was used.
func Summarize(img *Image) Summary {
	s := Summary{
		Width:         img.Width,
		Height:        img.Height,
		Header:        img.Header,
		Records:       Describe(img.Container),
		Filters:       make(map[string]int),
		TrailingBytes: img.Container.Trailing,
	}

	for _, rec := range img.Container.All(codec.KindImageData) {
		s.ImageDataCount++
		s.CompressedBytes += len(rec.Payload)
	}
	for _, ft := range img.Grid.Filters {
		s.Filters[ft.String()]++
	}

	if rec := img.Container.First(codec.KindGamma); rec != nil {
		if g, ok := rec.Fields.(*codec.Gamma); ok {
			v := g.Value()
			s.Gamma = &v
		}
	}
	if rec := img.Container.First(codec.KindPhysical); rec != nil {
		if p, ok := rec.Fields.(*codec.PhysicalDimensions); ok {
			if mm, ok := p.MillimetresPerPixel(); ok {
				s.MMPerPixel = &mm
			}
		}
	}
	return s
}

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/rgbpng/pkg/cursor"
	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// Fields is the decoded, kind specific content of a record
type Fields interface {
	Kind() Kind
}

// Color types defined by PNG
const (
	ColorGrayscale      = 0
	ColorTrueColor      = 2
	ColorPaletted       = 3
	ColorGrayscaleAlpha = 4
	ColorTrueColorAlpha = 6
)

// UnitMetre is the pHYs unit flag for pixels per metre
const UnitMetre = 1

// Header is the IHDR record: image geometry and method fields
type Header struct {
	Width             uint32 `json:"width"`
	Height            uint32 `json:"height"`
	BitDepth          uint8  `json:"bit_depth"`
	ColorType         uint8  `json:"color_type"`
	CompressionMethod uint8  `json:"compression_method"`
	FilterMethod      uint8  `json:"filter_method"`
	InterlaceMethod   uint8  `json:"interlace_method"`
}

// RenderingIntent is the sRGB record
type RenderingIntent struct {
	Intent uint8 `json:"rendering_intent"`
}

// PhysicalDimensions is the pHYs record
type PhysicalDimensions struct {
	PixelsPerUnitX uint32 `json:"ppu_x"`
	PixelsPerUnitY uint32 `json:"ppu_y"`
	Unit           uint8  `json:"unit_spec"`
}

// Gamma is the gAMA record, the image gamma times 100000
type Gamma struct {
	Gamma uint32 `json:"gamma"`
}

// End is the IEND terminator. It carries no fields.
type End struct{}

func (*Header) Kind() Kind             { return KindHeader }
func (*RenderingIntent) Kind() Kind    { return KindRenderingIntent }
func (*PhysicalDimensions) Kind() Kind { return KindPhysical }
func (*Gamma) Kind() Kind              { return KindGamma }
func (*End) Kind() Kind                { return KindEnd }

// Bytes encodes the header as an IHDR payload
func (h *Header) Bytes() []byte {
	buf := make([]byte, 13)
	binary.BigEndian.PutUint32(buf[0:], h.Width)
	binary.BigEndian.PutUint32(buf[4:], h.Height)
	buf[8] = h.BitDepth
	buf[9] = h.ColorType
	buf[10] = h.CompressionMethod
	buf[11] = h.FilterMethod
	buf[12] = h.InterlaceMethod
	return buf
}

// MillimetresPerPixel reports the physical size of one pixel along x.
// It returns false unless the unit is metres and the density is non-zero.
func (p *PhysicalDimensions) MillimetresPerPixel() (float64, bool) {
	if p.Unit != UnitMetre || p.PixelsPerUnitX == 0 {
		return 0, false
	}
	return 1000 / float64(p.PixelsPerUnitX), true
}

// Value returns the gamma as a float
func (g *Gamma) Value() float64 {
	return float64(g.Gamma) / 100000
}

// schemaSizes is the minimum payload size of each interpreted kind
var schemaSizes = map[Kind]int{
	KindHeader:          13,
	KindRenderingIntent: 1,
	KindPhysical:        9,
	KindGamma:           4,
	KindEnd:             0,
}

// decodeFields interprets the payload of recognized kinds in document order.
// Payload bytes beyond the schema are ignored.
func decodeFields(kind Kind, payload []byte) (Fields, error) {
	need, ok := schemaSizes[kind]
	if !ok {
		return nil, nil
	}
	if len(payload) < need {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, need %d",
			pngerr.ErrMalformedRecord, kind, len(payload), need)
	}

	c := cursor.New(payload)
	// The length check above guarantees the reads below succeed.
	switch kind {
	case KindHeader:
		h := &Header{}
		h.Width, _ = c.TakeUint32()
		h.Height, _ = c.TakeUint32()
		h.BitDepth, _ = c.TakeUint8()
		h.ColorType, _ = c.TakeUint8()
		h.CompressionMethod, _ = c.TakeUint8()
		h.FilterMethod, _ = c.TakeUint8()
		h.InterlaceMethod, _ = c.TakeUint8()
		return h, nil
	case KindRenderingIntent:
		s := &RenderingIntent{}
		s.Intent, _ = c.TakeUint8()
		return s, nil
	case KindPhysical:
		p := &PhysicalDimensions{}
		p.PixelsPerUnitX, _ = c.TakeUint32()
		p.PixelsPerUnitY, _ = c.TakeUint32()
		p.Unit, _ = c.TakeUint8()
		return p, nil
	case KindGamma:
		g := &Gamma{}
		g.Gamma, _ = c.TakeUint32()
		return g, nil
	case KindEnd:
		return &End{}, nil
	}
	return nil, nil
}

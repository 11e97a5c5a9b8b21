package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ssargent/rgbpng/pkg/cursor"
	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// Kind is the four byte chunk type tag
type Kind string

// Chunk kinds the codec knows about
const (
	KindHeader          Kind = "IHDR"
	KindImageData       Kind = "IDAT"
	KindEnd             Kind = "IEND"
	KindRenderingIntent Kind = "sRGB"
	KindPhysical        Kind = "pHYs"
	KindGamma           Kind = "gAMA"
)

// headerSize is Length(4) + Kind(4); the trailing CRC adds another 4.
const (
	headerSize  = 8
	trailerSize = 4
)

// Record represents one chunk of the container
type Record struct {
	Length  uint32 // Payload length in bytes
	Kind    Kind   // Chunk type tag
	Payload []byte // Chunk data
	CRC32   uint32 // Stored checksum over Kind and Payload
	Fields  Fields // Decoded fields, nil for kinds the codec does not interpret
}

// ParseRecord reads exactly one record from c.
// Format: [Length(4)][Kind(4)][Payload(Length)][CRC32(4)], all big-endian.
// The checksum is consumed but not verified; call Validate for that.
func ParseRecord(c *cursor.Cursor) (*Record, error) {
	start := c.Offset()

	length, err := c.TakeUint32()
	if err != nil {
		return nil, fmt.Errorf("record at offset %d: length: %w", start, err)
	}
	kind, err := c.Take(4)
	if err != nil {
		return nil, fmt.Errorf("record at offset %d: kind: %w", start, err)
	}
	payload, err := c.Take(int(length))
	if err != nil {
		return nil, fmt.Errorf("record %q at offset %d: payload: %w", kind, start, err)
	}
	crc, err := c.TakeUint32()
	if err != nil {
		return nil, fmt.Errorf("record %q at offset %d: checksum: %w", kind, start, err)
	}

	r := &Record{
		Length:  length,
		Kind:    Kind(kind),
		Payload: payload,
		CRC32:   crc,
	}
	if r.Fields, err = decodeFields(r.Kind, payload); err != nil {
		return nil, err
	}
	return r, nil
}

// Encode serializes a chunk with a freshly computed checksum
func Encode(kind Kind, payload []byte) ([]byte, error) {
	if len(kind) != 4 {
		return nil, fmt.Errorf("%w: kind %q must be 4 bytes", pngerr.ErrMalformedRecord, kind)
	}
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %q payload of %d bytes exceeds the length field",
			pngerr.ErrMalformedRecord, kind, len(payload))
	}

	buf := make([]byte, headerSize+len(payload)+trailerSize)
	binary.BigEndian.PutUint32(buf[0:], uint32(len(payload)))
	copy(buf[4:], kind)
	copy(buf[headerSize:], payload)
	binary.BigEndian.PutUint32(buf[headerSize+len(payload):], checksum(kind, payload))
	return buf, nil
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return headerSize + len(r.Payload) + trailerSize
}

// Checksum computes the CRC32 the record should carry
func (r *Record) Checksum() uint32 {
	return checksum(r.Kind, r.Payload)
}

// Validate checks the stored CRC32 against the record contents.
// Decoding never calls this; it exists for diagnostics.
func (r *Record) Validate() error {
	if sum := r.Checksum(); sum != r.CRC32 {
		return fmt.Errorf("%w: %s CRC32 mismatch: %08x != %08x", pngerr.ErrMalformedRecord, r.Kind, r.CRC32, sum)
	}
	return nil
}

// Header returns the decoded IHDR fields when r is a header record
func (r *Record) Header() (*Header, bool) {
	h, ok := r.Fields.(*Header)
	return h, ok
}

// HexPreview formats up to n payload bytes as space separated hex
func (r *Record) HexPreview(n int) string {
	if n < 0 || n > len(r.Payload) {
		n = len(r.Payload)
	}
	return fmt.Sprintf("% x", r.Payload[:n])
}

func checksum(kind Kind, payload []byte) uint32 {
	crc := crc32.NewIEEE()
	// hash.Hash never returns an error from Write
	_, _ = crc.Write([]byte(kind))
	_, _ = crc.Write(payload)
	return crc.Sum32()
}

// Package codec provides chunk (record) parsing and serialization for the
// PNG container.
//
// # Record Format
//
// A PNG stream, after its 8 byte signature, is a sequence of records:
//
//	[Length(4)][Kind(4)][Payload(Length)][CRC32(4)]
//
// Fields:
//   - Length: 32-bit unsigned payload length (big-endian)
//   - Kind: 4 ASCII bytes naming the chunk type, e.g. IHDR
//   - Payload: Length bytes of chunk data
//   - CRC32: IEEE CRC over Kind and Payload (big-endian)
//
// The total record size is: 12 bytes + Length
//
// # Decoded Fields
//
// ParseRecord interprets the payload of a small set of kinds into typed
// Fields values:
//
//	IHDR  Header              width(4) height(4) depth(1) color(1) compression(1) filter(1) interlace(1)
//	sRGB  RenderingIntent     intent(1)
//	pHYs  PhysicalDimensions  ppu_x(4) ppu_y(4) unit(1)
//	gAMA  Gamma               gamma(4)
//	IEND  End                 (empty)
//
// A payload shorter than its schema is ErrMalformedRecord. Any other kind
// is accepted with nil Fields so that new chunk types pass through
// untouched.
//
// # Checksums
//
// ParseRecord consumes the CRC32 to keep the stream aligned but does not
// verify it, so a flipped payload bit goes unnoticed by decoding.
// Record.Validate performs the check on demand and is what `rgbpng inspect`
// reports.
//
// # Usage
//
//	c := cursor.New(stream)
//	rec, err := codec.ParseRecord(c)
//	if err != nil {
//	    return err
//	}
//	if h, ok := rec.Header(); ok {
//	    fmt.Println(h.Width, h.Height)
//	}
//
// Records are immutable after parsing. Payload slices alias the buffer the
// cursor reads from.
package codec

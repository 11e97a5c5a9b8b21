package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rgbpng/pkg/codec"
)

func TestSummarize(t *testing.T) {
	phys := []byte{0, 0, 0x0B, 0x13, 0, 0, 0x0B, 0x13, codec.UnitMetre} // 2835 ppm
	data := buildPNG(t, rgbHeader(2, 2), []byte{
		0, 10, 20, 30, 40, 50, 60,
		1, 5, 5, 5, 5, 5, 5,
	},
		chunk(t, codec.KindGamma, []byte{0, 0, 0xB1, 0x8F}),
		chunk(t, codec.KindPhysical, phys),
	)
	data = append(data, 0, 0)

	img, err := New().DecodeBytes(data)
	require.NoError(t, err)

	s := Summarize(img)
	assert.Equal(t, 2, s.Width)
	assert.Equal(t, 2, s.Height)
	assert.Equal(t, uint8(codec.ColorTrueColor), s.Header.ColorType)
	assert.Equal(t, map[string]int{"None": 1, "Sub": 1}, s.Filters)
	assert.Equal(t, 1, s.ImageDataCount)
	assert.Equal(t, 2, s.TrailingBytes)

	require.NotNil(t, s.Gamma)
	assert.InDelta(t, 0.45455, *s.Gamma, 1e-9)
	require.NotNil(t, s.MMPerPixel)
	assert.InDelta(t, 0.3527, *s.MMPerPixel, 1e-4)

	require.Len(t, s.Records, 5)
	assert.Equal(t, codec.KindHeader, s.Records[0].Kind)
	assert.Equal(t, 8, s.Records[0].Offset)
	assert.Equal(t, 8+12+13, s.Records[1].Offset)
	for _, r := range s.Records {
		assert.True(t, r.CRCValid, "record %s", r.Kind)
	}
	assert.Equal(t, codec.KindEnd, s.Records[4].Kind)
}

func TestDescribe_BadChecksum(t *testing.T) {
	data := buildPNG(t, rgbHeader(1, 1), []byte{0, 1, 2, 3})
	// last four bytes are the IEND checksum
	data[len(data)-1] ^= 0x01

	ct, err := New().Parse(data)
	require.NoError(t, err)

	infos := Describe(ct)
	require.Len(t, infos, 3)
	assert.True(t, infos[0].CRCValid)
	assert.False(t, infos[2].CRCValid)

	_, err = New().DecodeContainer(ct)
	assert.NoError(t, err, "checksums are not verified while decoding")
}

//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"

	"github.com/ssargent/rgbpng/pkg/cursor"
)

var benchmarks = []struct {
	name    string
	kind    Kind
	payload []byte
}{
	{
		name:    "header",
		kind:    KindHeader,
		payload: (&Header{Width: 1920, Height: 1080, BitDepth: 8, ColorType: ColorTrueColor}).Bytes(),
	},
	{
		name:    "medium",
		kind:    KindImageData,
		payload: bytes.Repeat([]byte("v"), 8192),
	},
	{
		name:    "large",
		kind:    KindImageData,
		payload: bytes.Repeat([]byte("v"), 1<<20),
	},
}

func BenchmarkEncode(b *testing.B) {
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(bm.payload)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Encode(bm.kind, bm.payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkParseRecord(b *testing.B) {
	for _, bm := range benchmarks {
		encoded := encode(b, bm.kind, bm.payload)
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(encoded)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ParseRecord(cursor.New(encoded)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkValidate(b *testing.B) {
	for _, bm := range benchmarks {
		record, err := ParseRecord(cursor.New(encode(b, bm.kind, bm.payload)))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(bm.payload)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := record.Validate(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

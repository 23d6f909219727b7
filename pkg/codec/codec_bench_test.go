//go:build bench
// +build bench

package codec

import (
	"testing"
	"time"
)

func BenchmarkDecodeHeader(b *testing.B) {
	data, err := sampleAsset().Encode()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := DecodeHeader(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPatchHeader(b *testing.B) {
	header, err := sampleAsset().Encode()
	if err != nil {
		b.Fatal(err)
	}

	benchmarks := []struct {
		name string
		tail int
	}{
		{name: "header_only", tail: 0},
		{name: "1KB_plugins", tail: 1024},
		{name: "10KB_plugins", tail: 10240},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			data := append(append([]byte{}, header...), make([]byte, bm.tail)...)
			m := SetOwner{Owner: testKey(0x42)}
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := PatchHeader(data, m); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkTokenRecord_RoundTrip(b *testing.B) {
	delegate := testKey(3)
	tr := &TokenRecord{Key: TokenRecordKey, Bump: 255, State: TokenStateLocked, Delegate: &delegate}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, err := tr.Encode()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := DecodeTokenRecord(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEnvelopeCodec_Encode(b *testing.B) {
	codec := NewEnvelopeCodec()
	key := testKey(1).Bytes()
	value := make([]byte, 1024)
	at := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Encode(key, value, at); err != nil {
			b.Fatal(err)
		}
	}
}

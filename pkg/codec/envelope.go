package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// envelopeHeaderSize is CRC32(4) + KeySize(4) + ValueSize(4) + Timestamp(8).
const envelopeHeaderSize = 20

// Envelope frames a stored snapshot with an integrity checksum
type Envelope struct {
	CRC32     uint32 // CRC32 checksum over everything after the CRC field
	KeySize   uint32 // Size of the key in bytes
	ValueSize uint32 // Size of the value in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Key       []byte // Account address
	Value     []byte // Encoded account state
}

// EnvelopeCodec handles serialization and deserialization of envelopes
type EnvelopeCodec struct{}

// NewEnvelopeCodec creates a new envelope codec instance
func NewEnvelopeCodec() *EnvelopeCodec {
	return &EnvelopeCodec{}
}

// Encode serializes a key-value pair taken at the given time.
// Format: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
func (c *EnvelopeCodec) Encode(key, value []byte, at time.Time) ([]byte, error) {
	e, err := NewEnvelope(key, value, at)
	if err != nil {
		return nil, err
	}
	e.CRC32 = e.calculateCRC32()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], e.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[envelopeHeaderSize:], e.Key)
	copy(buf[envelopeHeaderSize+int(e.KeySize):], e.Value)

	return buf, nil
}

// Decode deserializes and validates an envelope.
func (c *EnvelopeCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for an envelope header", ErrSnapshotCorrupt, len(data))
	}

	e := &Envelope{}
	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.KeySize = binary.LittleEndian.Uint32(data[4:8])
	e.ValueSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])

	want := uint64(envelopeHeaderSize) + uint64(e.KeySize) + uint64(e.ValueSize)
	if uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: envelope is %d bytes, sizes declare %d", ErrSnapshotCorrupt, len(data), want)
	}

	e.Key = data[envelopeHeaderSize : envelopeHeaderSize+e.KeySize]
	e.Value = data[envelopeHeaderSize+e.KeySize:]

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the integrity of an envelope using CRC32
func (e *Envelope) Validate() error {
	if sum := e.calculateCRC32(); e.CRC32 != sum {
		return fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrSnapshotCorrupt, e.CRC32, sum)
	}
	return nil
}

// Size returns the total size of the envelope when encoded
func (e *Envelope) Size() int {
	return envelopeHeaderSize + len(e.Key) + len(e.Value)
}

// Time returns the timestamp as a time.Time.
func (e *Envelope) Time() time.Time {
	return time.Unix(0, int64(e.Timestamp))
}

// NewEnvelope creates an envelope for key and value taken at the given time
func NewEnvelope(key, value []byte, at time.Time) (*Envelope, error) {
	if uint64(len(key)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: key is %d bytes", ErrFieldTooWide, len(key))
	}
	if uint64(len(value)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: value is %d bytes", ErrFieldTooWide, len(value))
	}
	return &Envelope{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(at.UnixNano()),
		Key:       key,
		Value:     value,
	}, nil
}

// calculateCRC32 computes the checksum over KeySize + ValueSize + Timestamp + Key + Value
func (e *Envelope) calculateCRC32() uint32 {
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:], e.KeySize)
	binary.LittleEndian.PutUint32(hdr[4:], e.ValueSize)
	binary.LittleEndian.PutUint64(hdr[8:], e.Timestamp)

	crc := crc32.NewIEEE()
	crc.Write(hdr[:])
	crc.Write(e.Key)
	crc.Write(e.Value)
	return crc.Sum32()
}

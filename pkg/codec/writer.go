package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// Writer appends little-endian fields to a buffer. A writer created with
// NewFixedWriter refuses to grow past its width.
type Writer struct {
	buf   []byte
	limit int // 0 means unbounded
}

// NewWriter creates an unbounded writer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// NewFixedWriter creates a writer that holds at most width bytes.
func NewFixedWriter(width int) *Writer {
	return &Writer{buf: make([]byte, 0, width), limit: width}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) room(n int, what string) error {
	if w.limit > 0 && len(w.buf)+n > w.limit {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, record width is %d",
			ErrFieldTooWide, what, n, len(w.buf), w.limit)
	}
	return nil
}

func (w *Writer) PutBytes(b []byte, what string) error {
	if err := w.room(len(b), what); err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	return nil
}

// PutZeros appends n zero bytes.
func (w *Writer) PutZeros(n int, what string) error {
	if err := w.room(n, what); err != nil {
		return err
	}
	w.buf = append(w.buf, make([]byte, n)...)
	return nil
}

func (w *Writer) PutU8(v uint8, what string) error {
	return w.PutBytes([]byte{v}, what)
}

func (w *Writer) PutBool(v bool, what string) error {
	if v {
		return w.PutU8(1, what)
	}
	return w.PutU8(0, what)
}

func (w *Writer) PutU16(v uint16, what string) error {
	return w.PutBytes(binary.LittleEndian.AppendUint16(nil, v), what)
}

func (w *Writer) PutU32(v uint32, what string) error {
	return w.PutBytes(binary.LittleEndian.AppendUint32(nil, v), what)
}

func (w *Writer) PutU64(v uint64, what string) error {
	return w.PutBytes(binary.LittleEndian.AppendUint64(nil, v), what)
}

func (w *Writer) PutPublicKey(pk solana.PublicKey, what string) error {
	return w.PutBytes(pk[:], what)
}

// PutString writes a u32 length prefix followed by the string bytes.
func (w *Writer) PutString(s, what string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return fmt.Errorf("%w: %s is %d bytes", ErrFieldTooWide, what, len(s))
	}
	if err := w.PutU32(uint32(len(s)), what+" length"); err != nil {
		return err
	}
	return w.PutBytes([]byte(s), what)
}

// PutCount writes a u32 vector length.
func (w *Writer) PutCount(n int, what string) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %s has %d entries", ErrFieldTooWide, what, n)
	}
	return w.PutU32(uint32(n), what+" count")
}

// PutBorshOption writes the variable-width optional tag.
func (w *Writer) PutBorshOption(present bool, what string) error {
	return w.PutBool(present, what+" tag")
}

package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
)

// Reader is a bounds-checked view over a buffer starting at an absolute offset.
// A Reader belongs to a single decode call; independent records each get their
// own Reader so that no read position is shared between them.
type Reader struct {
	buf []byte
	pos int
	// fail is the sentinel wrapped by every bounds error raised by this reader.
	fail error
}

// NewReader returns a reader positioned at off. Bounds failures wrap fail.
func NewReader(buf []byte, off int, fail error) *Reader {
	return &Reader{buf: buf, pos: off, fail: fail}
}

// Pos returns the absolute offset of the next byte to read.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

func (r *Reader) need(n int, what string) error {
	if n < 0 || r.pos < 0 || r.pos > len(r.buf) || len(r.buf)-r.pos < n {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, buffer is %d bytes",
			r.fail, what, n, r.pos, len(r.buf))
	}
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int, what string) ([]byte, error) {
	if err := r.need(n, what); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int, what string) error {
	_, err := r.Bytes(n, what)
	return err
}

func (r *Reader) U8(what string) (uint8, error) {
	b, err := r.Bytes(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Bool(what string) (bool, error) {
	v, err := r.U8(what)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s has invalid bool value %d", r.fail, what, v)
}

func (r *Reader) U16(what string) (uint16, error) {
	b, err := r.Bytes(2, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32(what string) (uint32, error) {
	b, err := r.Bytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64(what string) (uint64, error) {
	b, err := r.Bytes(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// PublicKey reads a fixed 32 byte identifier.
func (r *Reader) PublicKey(what string) (solana.PublicKey, error) {
	var pk solana.PublicKey
	b, err := r.Bytes(solana.PublicKeyLength, what)
	if err != nil {
		return pk, err
	}
	copy(pk[:], b)
	return pk, nil
}

// String reads a u32 length prefixed UTF-8 string. The declared length is
// checked against the remaining buffer before anything is allocated.
func (r *Reader) String(what string) (string, error) {
	n, err := r.U32(what + " length")
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.Remaining()) {
		return "", fmt.Errorf("%w: %s declares %d bytes, %d remain", r.fail, what, n, r.Remaining())
	}
	b, err := r.Bytes(int(n), what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", r.fail, what)
	}
	return string(b), nil
}

// Count reads a u32 vector length and rejects counts whose smallest possible
// encoding (count * minItem bytes) would run past the end of the buffer.
func (r *Reader) Count(what string, minItem int) (int, error) {
	n, err := r.U32(what + " count")
	if err != nil {
		return 0, err
	}
	if minItem > 0 && uint64(n)*uint64(minItem) > uint64(r.Remaining()) {
		return 0, fmt.Errorf("%w: %s declares %d entries of at least %d bytes, %d remain",
			r.fail, what, n, minItem, r.Remaining())
	}
	return int(n), nil
}

// BorshOption reads a variable-width optional tag: 0 means absent and no
// payload follows, 1 means present and the payload follows immediately.
func (r *Reader) BorshOption(what string) (bool, error) {
	tag, err := r.U8(what + " tag")
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s has invalid option tag %d", r.fail, what, tag)
}

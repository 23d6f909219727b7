package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SlotLayout is a fixed-slot optional encoding: a presence tag of TagWidth
// bytes followed by a payload slot that is always reserved, zero-filled when
// the value is absent. Every fixed-width record codec declares exactly one
// layout and uses it for all of its optional fields.
type SlotLayout struct {
	Name     string
	Version  uint8
	TagWidth int
}

var (
	// SlotTag8 is the token metadata convention: one byte tag.
	SlotTag8 = SlotLayout{Name: "tag8", Version: 1, TagWidth: 1}
	// SlotTag32 is the SPL token COption convention: four byte little-endian tag.
	SlotTag32 = SlotLayout{Name: "tag32", Version: 1, TagWidth: 4}
)

// SlotSize returns the total bytes one optional field occupies.
func (l SlotLayout) SlotSize(width int) int {
	return l.TagWidth + width
}

// Read decodes the tag and returns the payload slot. The slot is consumed in
// full whether or not the value is present; payload is nil when absent.
func (l SlotLayout) Read(r *Reader, width int, what string) ([]byte, error) {
	tagBytes, err := r.Bytes(l.TagWidth, what+" tag")
	if err != nil {
		return nil, err
	}
	var tag uint32
	switch l.TagWidth {
	case 1:
		tag = uint32(tagBytes[0])
	case 4:
		tag = binary.LittleEndian.Uint32(tagBytes)
	default:
		return nil, fmt.Errorf("%w: slot layout %s has unsupported tag width %d", ErrMalformedRecord, l.Name, l.TagWidth)
	}
	slot, err := r.Bytes(width, what)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return slot, nil
	}
	return nil, fmt.Errorf("%w: %s has invalid presence tag %d", ErrMalformedRecord, what, tag)
}

// Write encodes the tag and either payload or width zero bytes. A payload
// longer than width does not fit its slot and is rejected.
func (l SlotLayout) Write(w *Writer, payload []byte, present bool, width int, what string) error {
	if present && len(payload) > width {
		return fmt.Errorf("%w: %s payload is %d bytes, slot is %d", ErrFieldTooWide, what, len(payload), width)
	}
	tag := make([]byte, l.TagWidth)
	if present {
		tag[0] = 1
	}
	if err := w.PutBytes(tag, what+" tag"); err != nil {
		return err
	}
	if !present {
		return w.PutZeros(width, what)
	}
	if err := w.PutBytes(payload, what); err != nil {
		return err
	}
	return w.PutZeros(width-len(payload), what+" padding")
}

// IsZeroSlot reports whether buf[off:off+SlotSize(width)] is entirely zero.
func (l SlotLayout) IsZeroSlot(buf []byte, off, width int) bool {
	end := off + l.SlotSize(width)
	if off < 0 || end > len(buf) {
		return false
	}
	return bytes.Count(buf[off:end], []byte{0}) == end-off
}

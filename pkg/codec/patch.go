package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// HeaderMutation changes a single header field. Only fixed-width scalar
// fields may be mutated; anything that could move the extension region is
// rejected before or after re-encoding.
type HeaderMutation interface {
	// Field names the header field the mutation targets.
	Field() string
	apply(h Header) error
}

// SetOwner replaces the owner of an asset.
type SetOwner struct {
	Owner solana.PublicKey
}

// SetUpdateAuthority replaces the update authority. Collections only accept
// the Address kind. Switching an asset to or from None changes the header
// length and is refused by the length check.
type SetUpdateAuthority struct {
	Authority UpdateAuthority
}

// SetSeq replaces the asset sequence number. A nil Seq clears it.
type SetSeq struct {
	Seq *uint64
}

// SetCollectionCounts replaces the minted and current size counters.
type SetCollectionCounts struct {
	NumMinted   uint32
	CurrentSize uint32
}

// SetName and SetURI target variable-width strings and are always refused.
type SetName struct{ Name string }
type SetURI struct{ URI string }

func (SetOwner) Field() string            { return "owner" }
func (SetUpdateAuthority) Field() string  { return "update_authority" }
func (SetSeq) Field() string              { return "seq" }
func (SetCollectionCounts) Field() string { return "counts" }
func (SetName) Field() string             { return "name" }
func (SetURI) Field() string              { return "uri" }

func unsupported(m HeaderMutation, h Header) error {
	return fmt.Errorf("%w: %s cannot be set on %s", ErrUnsupportedMutation, m.Field(), h.Key())
}

func (m SetOwner) apply(h Header) error {
	asset, ok := h.(*AssetHeader)
	if !ok {
		return unsupported(m, h)
	}
	asset.Owner = m.Owner
	return nil
}

func (m SetUpdateAuthority) apply(h Header) error {
	switch hdr := h.(type) {
	case *AssetHeader:
		hdr.UpdateAuthority = m.Authority
		return nil
	case *CollectionHeader:
		if m.Authority.Kind != UpdateAuthorityAddress {
			return fmt.Errorf("%w: collection update authority must be an address, got %s",
				ErrUnsupportedMutation, m.Authority.Kind)
		}
		hdr.UpdateAuthority = m.Authority.Address
		return nil
	}
	return unsupported(m, h)
}

func (m SetSeq) apply(h Header) error {
	asset, ok := h.(*AssetHeader)
	if !ok {
		return unsupported(m, h)
	}
	asset.Seq = m.Seq
	return nil
}

func (m SetCollectionCounts) apply(h Header) error {
	coll, ok := h.(*CollectionHeader)
	if !ok {
		return unsupported(m, h)
	}
	coll.NumMinted = m.NumMinted
	coll.CurrentSize = m.CurrentSize
	return nil
}

func (m SetName) apply(h Header) error {
	return fmt.Errorf("%w: name is variable width", ErrUnsupportedMutation)
}

func (m SetURI) apply(h Header) error {
	return fmt.Errorf("%w: uri is variable width", ErrUnsupportedMutation)
}

// PatchResult carries the patched buffer and the header it was built from.
type PatchResult struct {
	Data      []byte
	Header    Header
	HeaderLen int
}

// PatchHeader decodes the header of buf, applies m, re-encodes the header and
// splices it over the original header region. Bytes from headerLen onwards
// are copied unchanged. buf itself is never modified.
func PatchHeader(buf []byte, m HeaderMutation) (*PatchResult, error) {
	h, headerLen, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := m.apply(h); err != nil {
		return nil, err
	}
	encoded, err := h.Encode()
	if err != nil {
		return nil, err
	}
	if len(encoded) != headerLen {
		return nil, fmt.Errorf("%w: %s re-encodes to %d bytes, original header is %d",
			ErrLengthMismatch, m.Field(), len(encoded), headerLen)
	}

	out := make([]byte, len(buf))
	copy(out, encoded)
	copy(out[headerLen:], buf[headerLen:])
	return &PatchResult{Data: out, Header: h, HeaderLen: headerLen}, nil
}

// PatchTokenRecord decodes a token record, applies mutate and returns the
// re-encoded TokenRecordWidth bytes.
func PatchTokenRecord(buf []byte, mutate func(*TokenRecord) error) ([]byte, error) {
	tr, err := DecodeTokenRecord(buf)
	if err != nil {
		return nil, err
	}
	if err := mutate(tr); err != nil {
		return nil, err
	}
	return tr.Encode()
}

// PatchTokenAccount decodes a token account, applies mutate and returns the
// re-encoded TokenAccountWidth bytes.
func PatchTokenAccount(buf []byte, mutate func(*TokenAccount) error) ([]byte, error) {
	ta, err := DecodeTokenAccount(buf)
	if err != nil {
		return nil, err
	}
	if err := mutate(ta); err != nil {
		return nil, err
	}
	return ta.Encode()
}

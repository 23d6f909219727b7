package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Key is the leading discriminant byte of a core account.
type Key uint8

const (
	KeyUninitialized  Key = 0
	KeyAssetV1        Key = 1
	KeyHashedAssetV1  Key = 2
	KeyPluginHeaderV1 Key = 3
	KeyPluginRegistry Key = 4
	KeyCollectionV1   Key = 5
)

func (k Key) String() string {
	switch k {
	case KeyUninitialized:
		return "Uninitialized"
	case KeyAssetV1:
		return "AssetV1"
	case KeyHashedAssetV1:
		return "HashedAssetV1"
	case KeyPluginHeaderV1:
		return "PluginHeaderV1"
	case KeyPluginRegistry:
		return "PluginRegistryV1"
	case KeyCollectionV1:
		return "CollectionV1"
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// UpdateAuthorityKind is the tag of an asset's update authority.
type UpdateAuthorityKind uint8

const (
	UpdateAuthorityNone       UpdateAuthorityKind = 0
	UpdateAuthorityAddress    UpdateAuthorityKind = 1
	UpdateAuthorityCollection UpdateAuthorityKind = 2
)

func (k UpdateAuthorityKind) String() string {
	switch k {
	case UpdateAuthorityNone:
		return "None"
	case UpdateAuthorityAddress:
		return "Address"
	case UpdateAuthorityCollection:
		return "Collection"
	}
	return fmt.Sprintf("UpdateAuthority(%d)", uint8(k))
}

// UpdateAuthority of an asset. Address is the zero key when Kind is None,
// and the variant then carries no payload on the wire.
type UpdateAuthority struct {
	Kind    UpdateAuthorityKind `json:"kind"`
	Address solana.PublicKey    `json:"address"`
}

func (u UpdateAuthority) encodedLen() int {
	if u.Kind == UpdateAuthorityNone {
		return 1
	}
	return 1 + solana.PublicKeyLength
}

// Header is the decoded prefix of a core asset or collection account.
type Header interface {
	Key() Key
	// Encode serializes the header. It is deterministic and has no side effects.
	Encode() ([]byte, error)
}

// AssetHeader is the base asset layout:
//
//	[key(1)][owner(32)][update_authority(1|33)][name(4+n)][uri(4+n)][seq(1|9)]
type AssetHeader struct {
	Owner           solana.PublicKey `json:"owner"`
	UpdateAuthority UpdateAuthority  `json:"update_authority"`
	Name            string           `json:"name"`
	URI             string           `json:"uri"`
	Seq             *uint64          `json:"seq,omitempty"`
}

// CollectionHeader is the base collection layout:
//
//	[key(1)][update_authority(32)][name(4+n)][uri(4+n)][num_minted(4)][current_size(4)]
type CollectionHeader struct {
	UpdateAuthority solana.PublicKey `json:"update_authority"`
	Name            string           `json:"name"`
	URI             string           `json:"uri"`
	NumMinted       uint32           `json:"num_minted"`
	CurrentSize     uint32           `json:"current_size"`
}

func (h *AssetHeader) Key() Key      { return KeyAssetV1 }
func (h *CollectionHeader) Key() Key { return KeyCollectionV1 }

// Size returns the encoded length of the header.
func (h *AssetHeader) Size() int {
	n := 1 + solana.PublicKeyLength + h.UpdateAuthority.encodedLen() + 4 + len(h.Name) + 4 + len(h.URI) + 1
	if h.Seq != nil {
		n += 8
	}
	return n
}

// Size returns the encoded length of the header.
func (h *CollectionHeader) Size() int {
	return 1 + solana.PublicKeyLength + 4 + len(h.Name) + 4 + len(h.URI) + 4 + 4
}

// DecodeHeader decodes the header of a core account, dispatching on the key
// byte. It returns the header and the number of bytes it occupies.
func DecodeHeader(buf []byte) (Header, int, error) {
	if len(buf) == 0 {
		return nil, 0, fmt.Errorf("%w: empty buffer", ErrMalformedHeader)
	}
	switch Key(buf[0]) {
	case KeyAssetV1:
		return DecodeAssetHeader(buf)
	case KeyCollectionV1:
		return DecodeCollectionHeader(buf)
	}
	return nil, 0, fmt.Errorf("%w: unexpected key %s", ErrMalformedHeader, Key(buf[0]))
}

func expectKey(r *Reader, want Key) error {
	k, err := r.U8("key")
	if err != nil {
		return err
	}
	if Key(k) != want {
		return fmt.Errorf("%w: key is %s, expected %s", ErrMalformedHeader, Key(k), want)
	}
	return nil
}

// DecodeAssetHeader decodes an asset header and reports its length.
func DecodeAssetHeader(buf []byte) (*AssetHeader, int, error) {
	r := NewReader(buf, 0, ErrMalformedHeader)
	if err := expectKey(r, KeyAssetV1); err != nil {
		return nil, 0, err
	}

	h := &AssetHeader{}
	var err error
	if h.Owner, err = r.PublicKey("owner"); err != nil {
		return nil, 0, err
	}
	if h.UpdateAuthority, err = readUpdateAuthority(r); err != nil {
		return nil, 0, err
	}
	if h.Name, err = r.String("name"); err != nil {
		return nil, 0, err
	}
	if h.URI, err = r.String("uri"); err != nil {
		return nil, 0, err
	}
	present, err := r.BorshOption("seq")
	if err != nil {
		return nil, 0, err
	}
	if present {
		seq, err := r.U64("seq")
		if err != nil {
			return nil, 0, err
		}
		h.Seq = &seq
	}
	return h, r.Pos(), nil
}

func readUpdateAuthority(r *Reader) (UpdateAuthority, error) {
	var ua UpdateAuthority
	tag, err := r.U8("update authority tag")
	if err != nil {
		return ua, err
	}
	ua.Kind = UpdateAuthorityKind(tag)
	switch ua.Kind {
	case UpdateAuthorityNone:
		return ua, nil
	case UpdateAuthorityAddress, UpdateAuthorityCollection:
		ua.Address, err = r.PublicKey("update authority")
		return ua, err
	}
	return ua, fmt.Errorf("%w: unknown update authority tag %d", ErrMalformedHeader, tag)
}

// Encode serializes the asset header.
func (h *AssetHeader) Encode() ([]byte, error) {
	w := NewWriter(h.Size())
	if err := w.PutU8(uint8(KeyAssetV1), "key"); err != nil {
		return nil, err
	}
	if err := w.PutPublicKey(h.Owner, "owner"); err != nil {
		return nil, err
	}
	switch h.UpdateAuthority.Kind {
	case UpdateAuthorityNone:
		if err := w.PutU8(uint8(UpdateAuthorityNone), "update authority tag"); err != nil {
			return nil, err
		}
	case UpdateAuthorityAddress, UpdateAuthorityCollection:
		if err := w.PutU8(uint8(h.UpdateAuthority.Kind), "update authority tag"); err != nil {
			return nil, err
		}
		if err := w.PutPublicKey(h.UpdateAuthority.Address, "update authority"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown update authority kind %d", ErrMalformedHeader, h.UpdateAuthority.Kind)
	}
	if err := w.PutString(h.Name, "name"); err != nil {
		return nil, err
	}
	if err := w.PutString(h.URI, "uri"); err != nil {
		return nil, err
	}
	if err := w.PutBorshOption(h.Seq != nil, "seq"); err != nil {
		return nil, err
	}
	if h.Seq != nil {
		if err := w.PutU64(*h.Seq, "seq"); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// DecodeCollectionHeader decodes a collection header and reports its length.
func DecodeCollectionHeader(buf []byte) (*CollectionHeader, int, error) {
	r := NewReader(buf, 0, ErrMalformedHeader)
	if err := expectKey(r, KeyCollectionV1); err != nil {
		return nil, 0, err
	}

	h := &CollectionHeader{}
	var err error
	if h.UpdateAuthority, err = r.PublicKey("update authority"); err != nil {
		return nil, 0, err
	}
	if h.Name, err = r.String("name"); err != nil {
		return nil, 0, err
	}
	if h.URI, err = r.String("uri"); err != nil {
		return nil, 0, err
	}
	if h.NumMinted, err = r.U32("num minted"); err != nil {
		return nil, 0, err
	}
	if h.CurrentSize, err = r.U32("current size"); err != nil {
		return nil, 0, err
	}
	return h, r.Pos(), nil
}

// Encode serializes the collection header.
func (h *CollectionHeader) Encode() ([]byte, error) {
	w := NewWriter(h.Size())
	if err := w.PutU8(uint8(KeyCollectionV1), "key"); err != nil {
		return nil, err
	}
	if err := w.PutPublicKey(h.UpdateAuthority, "update authority"); err != nil {
		return nil, err
	}
	if err := w.PutString(h.Name, "name"); err != nil {
		return nil, err
	}
	if err := w.PutString(h.URI, "uri"); err != nil {
		return nil, err
	}
	if err := w.PutU32(h.NumMinted, "num minted"); err != nil {
		return nil, err
	}
	if err := w.PutU32(h.CurrentSize, "current size"); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

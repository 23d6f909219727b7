package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Plugin is a decoded plugin payload. The concrete type is selected by Kind.
type Plugin interface {
	Kind() PluginKind
	encode(w *Writer) error
}

// Creator receives a share of royalties.
type Creator struct {
	Address    solana.PublicKey `json:"address"`
	Percentage uint8            `json:"percentage"`
}

// RuleSetKind selects how royalties restrict programs.
type RuleSetKind uint8

const (
	RuleSetNone             RuleSetKind = 0
	RuleSetProgramAllowList RuleSetKind = 1
	RuleSetProgramDenyList  RuleSetKind = 2
)

type RuleSet struct {
	Kind     RuleSetKind        `json:"kind"`
	Programs []solana.PublicKey `json:"programs,omitempty"`
}

type Royalties struct {
	BasisPoints uint16    `json:"basis_points"`
	Creators    []Creator `json:"creators"`
	RuleSet     RuleSet   `json:"rule_set"`
}

type FreezeDelegate struct {
	Frozen bool `json:"frozen"`
}

type BurnDelegate struct{}

type TransferDelegate struct{}

type UpdateDelegate struct {
	AdditionalDelegates []solana.PublicKey `json:"additional_delegates"`
}

type PermanentFreezeDelegate struct {
	Frozen bool `json:"frozen"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Attributes struct {
	AttributeList []Attribute `json:"attribute_list"`
}

type PermanentTransferDelegate struct{}

type PermanentBurnDelegate struct{}

type Edition struct {
	Number uint32 `json:"number"`
}

type MasterEdition struct {
	MaxSupply *uint32 `json:"max_supply,omitempty"`
	Name      *string `json:"name,omitempty"`
	URI       *string `json:"uri,omitempty"`
}

type AddBlocker struct{}

type ImmutableMetadata struct{}

type CreatorSignature struct {
	Address  solana.PublicKey `json:"address"`
	Verified bool             `json:"verified"`
}

type VerifiedCreators struct {
	Signatures []CreatorSignature `json:"signatures"`
}

type AutographSignature struct {
	Address solana.PublicKey `json:"address"`
	Message string           `json:"message"`
}

type Autograph struct {
	Signatures []AutographSignature `json:"signatures"`
}

type BubblegumV2 struct{}

type FreezeExecute struct {
	Frozen bool `json:"frozen"`
}

type PermanentFreezeExecute struct {
	Frozen bool `json:"frozen"`
}

func (*Royalties) Kind() PluginKind                 { return PluginRoyalties }
func (*FreezeDelegate) Kind() PluginKind            { return PluginFreezeDelegate }
func (*BurnDelegate) Kind() PluginKind              { return PluginBurnDelegate }
func (*TransferDelegate) Kind() PluginKind          { return PluginTransferDelegate }
func (*UpdateDelegate) Kind() PluginKind            { return PluginUpdateDelegate }
func (*PermanentFreezeDelegate) Kind() PluginKind   { return PluginPermanentFreezeDelegate }
func (*Attributes) Kind() PluginKind                { return PluginAttributes }
func (*PermanentTransferDelegate) Kind() PluginKind { return PluginPermanentTransferDelegate }
func (*PermanentBurnDelegate) Kind() PluginKind     { return PluginPermanentBurnDelegate }
func (*Edition) Kind() PluginKind                   { return PluginEdition }
func (*MasterEdition) Kind() PluginKind             { return PluginMasterEdition }
func (*AddBlocker) Kind() PluginKind                { return PluginAddBlocker }
func (*ImmutableMetadata) Kind() PluginKind         { return PluginImmutableMetadata }
func (*VerifiedCreators) Kind() PluginKind          { return PluginVerifiedCreators }
func (*Autograph) Kind() PluginKind                 { return PluginAutograph }
func (*BubblegumV2) Kind() PluginKind               { return PluginBubblegumV2 }
func (*FreezeExecute) Kind() PluginKind             { return PluginFreezeExecute }
func (*PermanentFreezeExecute) Kind() PluginKind    { return PluginPermanentFreezeExecute }

// DecodePlugin decodes the payload an entry points at. Every call reads from
// its own reader positioned at entry.Offset, so entries can be decoded in any
// order and any number of times with identical results.
func DecodePlugin(buf []byte, entry PluginEntry) (Plugin, error) {
	if err := checkOffset(entry.Offset, len(buf), "plugin"); err != nil {
		return nil, err
	}
	r := NewReader(buf, int(entry.Offset), ErrMalformedRegistry)
	tag, err := r.U8("plugin tag")
	if err != nil {
		return nil, err
	}
	if PluginKind(tag) != entry.Kind {
		return nil, fmt.Errorf("%w: payload at %d is %s, registry says %s",
			ErrMalformedRegistry, entry.Offset, PluginKind(tag), entry.Kind)
	}
	p, err := decodePluginBody(r, entry.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s at %d: %w", entry.Kind, entry.Offset, err)
	}
	return p, nil
}

func decodePluginBody(r *Reader, kind PluginKind) (Plugin, error) {
	switch kind {
	case PluginRoyalties:
		return readRoyalties(r)
	case PluginFreezeDelegate:
		frozen, err := r.Bool("frozen")
		return &FreezeDelegate{Frozen: frozen}, err
	case PluginBurnDelegate:
		return &BurnDelegate{}, nil
	case PluginTransferDelegate:
		return &TransferDelegate{}, nil
	case PluginUpdateDelegate:
		keys, err := readKeyVec(r, "additional delegates")
		return &UpdateDelegate{AdditionalDelegates: keys}, err
	case PluginPermanentFreezeDelegate:
		frozen, err := r.Bool("frozen")
		return &PermanentFreezeDelegate{Frozen: frozen}, err
	case PluginAttributes:
		return readAttributes(r)
	case PluginPermanentTransferDelegate:
		return &PermanentTransferDelegate{}, nil
	case PluginPermanentBurnDelegate:
		return &PermanentBurnDelegate{}, nil
	case PluginEdition:
		n, err := r.U32("edition number")
		return &Edition{Number: n}, err
	case PluginMasterEdition:
		return readMasterEdition(r)
	case PluginAddBlocker:
		return &AddBlocker{}, nil
	case PluginImmutableMetadata:
		return &ImmutableMetadata{}, nil
	case PluginVerifiedCreators:
		return readVerifiedCreators(r)
	case PluginAutograph:
		return readAutograph(r)
	case PluginBubblegumV2:
		return &BubblegumV2{}, nil
	case PluginFreezeExecute:
		frozen, err := r.Bool("frozen")
		return &FreezeExecute{Frozen: frozen}, err
	case PluginPermanentFreezeExecute:
		frozen, err := r.Bool("frozen")
		return &PermanentFreezeExecute{Frozen: frozen}, err
	}
	return nil, fmt.Errorf("%w: unknown plugin kind %d", ErrMalformedRegistry, uint8(kind))
}

func readKeyVec(r *Reader, what string) ([]solana.PublicKey, error) {
	n, err := r.Count(what, solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}
	keys := make([]solana.PublicKey, 0, n)
	for i := 0; i < n; i++ {
		pk, err := r.PublicKey(what)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

func readRoyalties(r *Reader) (*Royalties, error) {
	p := &Royalties{}
	var err error
	if p.BasisPoints, err = r.U16("basis points"); err != nil {
		return nil, err
	}
	n, err := r.Count("creators", solana.PublicKeyLength+1)
	if err != nil {
		return nil, err
	}
	p.Creators = make([]Creator, 0, n)
	for i := 0; i < n; i++ {
		var c Creator
		if c.Address, err = r.PublicKey("creator"); err != nil {
			return nil, err
		}
		if c.Percentage, err = r.U8("creator percentage"); err != nil {
			return nil, err
		}
		p.Creators = append(p.Creators, c)
	}
	kind, err := r.U8("rule set tag")
	if err != nil {
		return nil, err
	}
	p.RuleSet.Kind = RuleSetKind(kind)
	switch p.RuleSet.Kind {
	case RuleSetNone:
	case RuleSetProgramAllowList, RuleSetProgramDenyList:
		if p.RuleSet.Programs, err = readKeyVec(r, "rule set programs"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown rule set tag %d", ErrMalformedRegistry, kind)
	}
	return p, nil
}

func readAttributes(r *Reader) (*Attributes, error) {
	n, err := r.Count("attributes", 8)
	if err != nil {
		return nil, err
	}
	p := &Attributes{AttributeList: make([]Attribute, 0, n)}
	for i := 0; i < n; i++ {
		var a Attribute
		if a.Key, err = r.String("attribute key"); err != nil {
			return nil, err
		}
		if a.Value, err = r.String("attribute value"); err != nil {
			return nil, err
		}
		p.AttributeList = append(p.AttributeList, a)
	}
	return p, nil
}

func readMasterEdition(r *Reader) (*MasterEdition, error) {
	p := &MasterEdition{}
	present, err := r.BorshOption("max supply")
	if err != nil {
		return nil, err
	}
	if present {
		v, err := r.U32("max supply")
		if err != nil {
			return nil, err
		}
		p.MaxSupply = &v
	}
	if p.Name, err = readOptionalString(r, "name"); err != nil {
		return nil, err
	}
	if p.URI, err = readOptionalString(r, "uri"); err != nil {
		return nil, err
	}
	return p, nil
}

func readOptionalString(r *Reader, what string) (*string, error) {
	present, err := r.BorshOption(what)
	if err != nil || !present {
		return nil, err
	}
	s, err := r.String(what)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func readVerifiedCreators(r *Reader) (*VerifiedCreators, error) {
	n, err := r.Count("signatures", solana.PublicKeyLength+1)
	if err != nil {
		return nil, err
	}
	p := &VerifiedCreators{Signatures: make([]CreatorSignature, 0, n)}
	for i := 0; i < n; i++ {
		var s CreatorSignature
		if s.Address, err = r.PublicKey("creator"); err != nil {
			return nil, err
		}
		if s.Verified, err = r.Bool("verified"); err != nil {
			return nil, err
		}
		p.Signatures = append(p.Signatures, s)
	}
	return p, nil
}

func readAutograph(r *Reader) (*Autograph, error) {
	n, err := r.Count("signatures", solana.PublicKeyLength+4)
	if err != nil {
		return nil, err
	}
	p := &Autograph{Signatures: make([]AutographSignature, 0, n)}
	for i := 0; i < n; i++ {
		var s AutographSignature
		if s.Address, err = r.PublicKey("signer"); err != nil {
			return nil, err
		}
		if s.Message, err = r.String("message"); err != nil {
			return nil, err
		}
		p.Signatures = append(p.Signatures, s)
	}
	return p, nil
}

// EncodePlugin serializes a plugin payload including its leading tag.
func EncodePlugin(p Plugin) ([]byte, error) {
	w := NewWriter(64)
	if err := w.PutU8(uint8(p.Kind()), "plugin tag"); err != nil {
		return nil, err
	}
	if err := p.encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeKeyVec(w *Writer, keys []solana.PublicKey, what string) error {
	if err := w.PutCount(len(keys), what); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.PutPublicKey(k, what); err != nil {
			return err
		}
	}
	return nil
}

func (p *Royalties) encode(w *Writer) error {
	if err := w.PutU16(p.BasisPoints, "basis points"); err != nil {
		return err
	}
	if err := w.PutCount(len(p.Creators), "creators"); err != nil {
		return err
	}
	for _, c := range p.Creators {
		if err := w.PutPublicKey(c.Address, "creator"); err != nil {
			return err
		}
		if err := w.PutU8(c.Percentage, "creator percentage"); err != nil {
			return err
		}
	}
	if err := w.PutU8(uint8(p.RuleSet.Kind), "rule set tag"); err != nil {
		return err
	}
	if p.RuleSet.Kind == RuleSetNone {
		return nil
	}
	return writeKeyVec(w, p.RuleSet.Programs, "rule set programs")
}

func (p *FreezeDelegate) encode(w *Writer) error          { return w.PutBool(p.Frozen, "frozen") }
func (p *BurnDelegate) encode(*Writer) error              { return nil }
func (p *TransferDelegate) encode(*Writer) error          { return nil }
func (p *PermanentFreezeDelegate) encode(w *Writer) error { return w.PutBool(p.Frozen, "frozen") }
func (p *PermanentTransferDelegate) encode(*Writer) error { return nil }
func (p *PermanentBurnDelegate) encode(*Writer) error     { return nil }
func (p *Edition) encode(w *Writer) error                 { return w.PutU32(p.Number, "edition number") }
func (p *AddBlocker) encode(*Writer) error                { return nil }
func (p *ImmutableMetadata) encode(*Writer) error         { return nil }
func (p *BubblegumV2) encode(*Writer) error               { return nil }
func (p *FreezeExecute) encode(w *Writer) error           { return w.PutBool(p.Frozen, "frozen") }
func (p *PermanentFreezeExecute) encode(w *Writer) error  { return w.PutBool(p.Frozen, "frozen") }

func (p *UpdateDelegate) encode(w *Writer) error {
	return writeKeyVec(w, p.AdditionalDelegates, "additional delegates")
}

func (p *Attributes) encode(w *Writer) error {
	if err := w.PutCount(len(p.AttributeList), "attributes"); err != nil {
		return err
	}
	for _, a := range p.AttributeList {
		if err := w.PutString(a.Key, "attribute key"); err != nil {
			return err
		}
		if err := w.PutString(a.Value, "attribute value"); err != nil {
			return err
		}
	}
	return nil
}

func (p *MasterEdition) encode(w *Writer) error {
	if err := w.PutBorshOption(p.MaxSupply != nil, "max supply"); err != nil {
		return err
	}
	if p.MaxSupply != nil {
		if err := w.PutU32(*p.MaxSupply, "max supply"); err != nil {
			return err
		}
	}
	for _, s := range []struct {
		v    *string
		what string
	}{{p.Name, "name"}, {p.URI, "uri"}} {
		if err := w.PutBorshOption(s.v != nil, s.what); err != nil {
			return err
		}
		if s.v != nil {
			if err := w.PutString(*s.v, s.what); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *VerifiedCreators) encode(w *Writer) error {
	if err := w.PutCount(len(p.Signatures), "signatures"); err != nil {
		return err
	}
	for _, s := range p.Signatures {
		if err := w.PutPublicKey(s.Address, "creator"); err != nil {
			return err
		}
		if err := w.PutBool(s.Verified, "verified"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Autograph) encode(w *Writer) error {
	if err := w.PutCount(len(p.Signatures), "signatures"); err != nil {
		return err
	}
	for _, s := range p.Signatures {
		if err := w.PutPublicKey(s.Address, "signer"); err != nil {
			return err
		}
		if err := w.PutString(s.Message, "message"); err != nil {
			return err
		}
	}
	return nil
}

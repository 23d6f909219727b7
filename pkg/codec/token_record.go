package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TokenRecordWidth is the fixed size of a token record account.
const TokenRecordWidth = 80

// Slot offsets within a token record.
const (
	TokenRecordStateOffset          = 2
	TokenRecordRuleSetOffset        = 3
	TokenRecordDelegateOffset       = 12
	TokenRecordDelegateRoleOffset   = 45
	TokenRecordLockedTransferOffset = 47
)

// TokenRecordKey is the token metadata account key of a token record.
const TokenRecordKey uint8 = 11

// TokenState is the lock state of a programmable token.
type TokenState uint8

const (
	TokenStateUnlocked TokenState = 0
	TokenStateLocked   TokenState = 1
	TokenStateListed   TokenState = 2
)

var tokenStateNames = map[TokenState]string{
	TokenStateUnlocked: "unlocked",
	TokenStateLocked:   "locked",
	TokenStateListed:   "listed",
}

func (s TokenState) String() string {
	if name, ok := tokenStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TokenState(%d)", uint8(s))
}

// ParseTokenState parses the lower-case state name.
func ParseTokenState(s string) (TokenState, error) {
	for state, name := range tokenStateNames {
		if name == s {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown token state %q", s)
}

// TokenDelegateRole is the role a token record delegate was approved for.
type TokenDelegateRole uint8

const (
	DelegateRoleSale           TokenDelegateRole = 0
	DelegateRoleTransfer       TokenDelegateRole = 1
	DelegateRoleUtility        TokenDelegateRole = 2
	DelegateRoleStaking        TokenDelegateRole = 3
	DelegateRoleStandard       TokenDelegateRole = 4
	DelegateRoleLockedTransfer TokenDelegateRole = 5
	DelegateRoleMigration      TokenDelegateRole = 6
)

var delegateRoleNames = map[TokenDelegateRole]string{
	DelegateRoleSale:           "sale",
	DelegateRoleTransfer:       "transfer",
	DelegateRoleUtility:        "utility",
	DelegateRoleStaking:        "staking",
	DelegateRoleStandard:       "standard",
	DelegateRoleLockedTransfer: "locked_transfer",
	DelegateRoleMigration:      "migration",
}

func (r TokenDelegateRole) String() string {
	if name, ok := delegateRoleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("TokenDelegateRole(%d)", uint8(r))
}

// TokenRecord tracks the state and delegate of a programmable token.
// All optional fields use the SlotTag8 layout.
type TokenRecord struct {
	Key             uint8              `json:"key"`
	Bump            uint8              `json:"bump"`
	State           TokenState         `json:"state"`
	RuleSetRevision *uint64            `json:"rule_set_revision,omitempty"`
	Delegate        *solana.PublicKey  `json:"delegate,omitempty"`
	DelegateRole    *TokenDelegateRole `json:"delegate_role,omitempty"`
	LockedTransfer  *solana.PublicKey  `json:"locked_transfer,omitempty"`
}

var tokenRecordSlots = SlotTag8

// DecodeTokenRecord decodes the first TokenRecordWidth bytes of buf.
func DecodeTokenRecord(buf []byte) (*TokenRecord, error) {
	if len(buf) < TokenRecordWidth {
		return nil, fmt.Errorf("%w: token record is %d bytes, need %d", ErrTruncatedRecord, len(buf), TokenRecordWidth)
	}
	r := NewReader(buf[:TokenRecordWidth], 0, ErrTruncatedRecord)
	tr := &TokenRecord{}
	var err error

	if tr.Key, err = r.U8("key"); err != nil {
		return nil, err
	}
	if tr.Key != TokenRecordKey {
		return nil, fmt.Errorf("%w: key is %d, expected %d", ErrMalformedRecord, tr.Key, TokenRecordKey)
	}
	if tr.Bump, err = r.U8("bump"); err != nil {
		return nil, err
	}
	state, err := r.U8("state")
	if err != nil {
		return nil, err
	}
	tr.State = TokenState(state)
	if _, ok := tokenStateNames[tr.State]; !ok {
		return nil, fmt.Errorf("%w: invalid token state %d", ErrMalformedRecord, state)
	}

	slot, err := tokenRecordSlots.Read(r, 8, "rule set revision")
	if err != nil {
		return nil, err
	}
	if slot != nil {
		v := binary.LittleEndian.Uint64(slot)
		tr.RuleSetRevision = &v
	}

	if tr.Delegate, err = readKeySlot(r, tokenRecordSlots, "delegate"); err != nil {
		return nil, err
	}

	slot, err = tokenRecordSlots.Read(r, 1, "delegate role")
	if err != nil {
		return nil, err
	}
	if slot != nil {
		role := TokenDelegateRole(slot[0])
		if _, ok := delegateRoleNames[role]; !ok {
			return nil, fmt.Errorf("%w: invalid delegate role %d", ErrMalformedRecord, slot[0])
		}
		tr.DelegateRole = &role
	}

	if tr.LockedTransfer, err = readKeySlot(r, tokenRecordSlots, "locked transfer"); err != nil {
		return nil, err
	}
	return tr, nil
}

// Encode serializes the record to exactly TokenRecordWidth bytes.
func (tr *TokenRecord) Encode() ([]byte, error) {
	w := NewFixedWriter(TokenRecordWidth)
	if err := w.PutU8(tr.Key, "key"); err != nil {
		return nil, err
	}
	if err := w.PutU8(tr.Bump, "bump"); err != nil {
		return nil, err
	}
	if err := w.PutU8(uint8(tr.State), "state"); err != nil {
		return nil, err
	}

	var rsr []byte
	if tr.RuleSetRevision != nil {
		rsr = binary.LittleEndian.AppendUint64(nil, *tr.RuleSetRevision)
	}
	if err := tokenRecordSlots.Write(w, rsr, tr.RuleSetRevision != nil, 8, "rule set revision"); err != nil {
		return nil, err
	}
	if err := writeKeySlot(w, tokenRecordSlots, tr.Delegate, "delegate"); err != nil {
		return nil, err
	}
	var role []byte
	if tr.DelegateRole != nil {
		role = []byte{uint8(*tr.DelegateRole)}
	}
	if err := tokenRecordSlots.Write(w, role, tr.DelegateRole != nil, 1, "delegate role"); err != nil {
		return nil, err
	}
	if err := writeKeySlot(w, tokenRecordSlots, tr.LockedTransfer, "locked transfer"); err != nil {
		return nil, err
	}
	return finishFixed(w, TokenRecordWidth)
}

func readKeySlot(r *Reader, layout SlotLayout, what string) (*solana.PublicKey, error) {
	slot, err := layout.Read(r, solana.PublicKeyLength, what)
	if err != nil || slot == nil {
		return nil, err
	}
	pk := solana.PublicKeyFromBytes(slot)
	return &pk, nil
}

func writeKeySlot(w *Writer, layout SlotLayout, pk *solana.PublicKey, what string) error {
	if pk == nil {
		return layout.Write(w, nil, false, solana.PublicKeyLength, what)
	}
	return layout.Write(w, pk[:], true, solana.PublicKeyLength, what)
}

// finishFixed zero-pads any bytes after the last field up to width.
func finishFixed(w *Writer, width int) ([]byte, error) {
	if err := w.PutZeros(width-w.Len(), "padding"); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TokenAccountWidth is the fixed size of an SPL token account.
const TokenAccountWidth = 165

// Slot offsets within a token account.
const (
	TokenAccountOwnerOffset          = 32
	TokenAccountAmountOffset         = 64
	TokenAccountDelegateOffset       = 72
	TokenAccountStateOffset          = 108
	TokenAccountIsNativeOffset       = 109
	TokenAccountDelegatedOffset      = 121
	TokenAccountCloseAuthorityOffset = 129
)

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

var accountStateNames = map[AccountState]string{
	AccountStateUninitialized: "uninitialized",
	AccountStateInitialized:   "initialized",
	AccountStateFrozen:        "frozen",
}

func (s AccountState) String() string {
	if name, ok := accountStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AccountState(%d)", uint8(s))
}

// ParseAccountState parses the lower-case state name.
func ParseAccountState(s string) (AccountState, error) {
	for state, name := range accountStateNames {
		if name == s {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown token account state %q", s)
}

// TokenAccount is an SPL token account, the layout behind every associated
// token account. Optional fields use the SlotTag32 (COption) layout.
type TokenAccount struct {
	Mint            solana.PublicKey  `json:"mint"`
	Owner           solana.PublicKey  `json:"owner"`
	Amount          uint64            `json:"amount"`
	Delegate        *solana.PublicKey `json:"delegate,omitempty"`
	State           AccountState      `json:"state"`
	IsNative        *uint64           `json:"is_native,omitempty"`
	DelegatedAmount uint64            `json:"delegated_amount"`
	CloseAuthority  *solana.PublicKey `json:"close_authority,omitempty"`
}

var tokenAccountSlots = SlotTag32

// DecodeTokenAccount decodes the first TokenAccountWidth bytes of buf.
func DecodeTokenAccount(buf []byte) (*TokenAccount, error) {
	if len(buf) < TokenAccountWidth {
		return nil, fmt.Errorf("%w: token account is %d bytes, need %d", ErrTruncatedRecord, len(buf), TokenAccountWidth)
	}
	r := NewReader(buf[:TokenAccountWidth], 0, ErrTruncatedRecord)
	ta := &TokenAccount{}
	var err error

	if ta.Mint, err = r.PublicKey("mint"); err != nil {
		return nil, err
	}
	if ta.Owner, err = r.PublicKey("owner"); err != nil {
		return nil, err
	}
	if ta.Amount, err = r.U64("amount"); err != nil {
		return nil, err
	}
	if ta.Delegate, err = readKeySlot(r, tokenAccountSlots, "delegate"); err != nil {
		return nil, err
	}
	state, err := r.U8("state")
	if err != nil {
		return nil, err
	}
	ta.State = AccountState(state)
	if _, ok := accountStateNames[ta.State]; !ok {
		return nil, fmt.Errorf("%w: invalid account state %d", ErrMalformedRecord, state)
	}
	slot, err := tokenAccountSlots.Read(r, 8, "is native")
	if err != nil {
		return nil, err
	}
	if slot != nil {
		v := binary.LittleEndian.Uint64(slot)
		ta.IsNative = &v
	}
	if ta.DelegatedAmount, err = r.U64("delegated amount"); err != nil {
		return nil, err
	}
	if ta.CloseAuthority, err = readKeySlot(r, tokenAccountSlots, "close authority"); err != nil {
		return nil, err
	}
	return ta, nil
}

// Encode serializes the account to exactly TokenAccountWidth bytes.
func (ta *TokenAccount) Encode() ([]byte, error) {
	w := NewFixedWriter(TokenAccountWidth)
	if err := w.PutPublicKey(ta.Mint, "mint"); err != nil {
		return nil, err
	}
	if err := w.PutPublicKey(ta.Owner, "owner"); err != nil {
		return nil, err
	}
	if err := w.PutU64(ta.Amount, "amount"); err != nil {
		return nil, err
	}
	if err := writeKeySlot(w, tokenAccountSlots, ta.Delegate, "delegate"); err != nil {
		return nil, err
	}
	if err := w.PutU8(uint8(ta.State), "state"); err != nil {
		return nil, err
	}
	var native []byte
	if ta.IsNative != nil {
		native = binary.LittleEndian.AppendUint64(nil, *ta.IsNative)
	}
	if err := tokenAccountSlots.Write(w, native, ta.IsNative != nil, 8, "is native"); err != nil {
		return nil, err
	}
	if err := w.PutU64(ta.DelegatedAmount, "delegated amount"); err != nil {
		return nil, err
	}
	if err := writeKeySlot(w, tokenAccountSlots, ta.CloseAuthority, "close authority"); err != nil {
		return nil, err
	}
	return finishFixed(w, TokenAccountWidth)
}

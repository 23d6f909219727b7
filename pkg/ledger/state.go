package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountState is everything the validator keeps for one address.
type AccountState struct {
	Lamports   uint64           `json:"lamports"`
	Data       []byte           `json:"data"`
	Owner      solana.PublicKey `json:"owner"`
	Executable bool             `json:"executable"`
	RentEpoch  uint64           `json:"rent_epoch"`
}

// Clone returns a deep copy of the state.
func (s *AccountState) Clone() *AccountState {
	c := *s
	c.Data = append([]byte(nil), s.Data...)
	return &c
}

// WithData returns a copy of the state carrying data instead of the current
// payload. Lamports, owner and the rest are unchanged.
func (s *AccountState) WithData(data []byte) AccountState {
	c := *s
	c.Data = data
	return c
}

// ClosedState is what a closed account looks like: no lamports, no data and
// owned by the system program.
func ClosedState() AccountState {
	return AccountState{
		Data:  []byte{},
		Owner: solana.SystemProgramID,
	}
}

// AccountStore reads and overwrites raw account state. Implementations block
// on the network; every call takes a context.
type AccountStore interface {
	// Get returns ErrRecordAbsent when nothing lives at key.
	Get(ctx context.Context, key solana.PublicKey) (*AccountState, error)
	Set(ctx context.Context, key solana.PublicKey, state AccountState) error
	Close(ctx context.Context, key solana.PublicKey) error
}

package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MemoryStore is an in-process AccountStore. It copies on every read and
// write so callers can never alias its contents.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*AccountState
	gets     int
	sets     int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[solana.PublicKey]*AccountState)}
}

func (m *MemoryStore) Get(ctx context.Context, key solana.PublicKey) (*AccountState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	s, ok := m.accounts[key]
	if !ok {
		return nil, ErrRecordAbsent
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Set(ctx context.Context, key solana.PublicKey, state AccountState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.accounts[key] = state.Clone()
	return nil
}

func (m *MemoryStore) Close(ctx context.Context, key solana.PublicKey) error {
	return m.Set(ctx, key, ClosedState())
}

// Calls reports how many Get and Set calls the store has served.
func (m *MemoryStore) Calls() (gets, sets int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.sets
}

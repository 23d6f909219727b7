// Package patcher runs the read, decode, mutate, encode and write-back
// sequence against an account store. Every write is preceded by a snapshot
// of the account as it was, when a snapshot store is configured.
package patcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/surfpatch/pkg/ledger"
	"github.com/ssargent/surfpatch/pkg/storage"
)

// CoreProgramID owns every core asset and collection account.
var CoreProgramID = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")

// Snapshots is the subset of the snapshot store the patcher needs.
type Snapshots interface {
	Save(addr solana.PublicKey, state ledger.AccountState, reason string) (*storage.Snapshot, error)
	Get(id ksuid.KSUID) (*storage.Snapshot, error)
	List(addr *solana.PublicKey) ([]*storage.Snapshot, error)
}

// Result describes one completed write.
type Result struct {
	Address  solana.PublicKey  `json:"address"`
	Mutation string            `json:"mutation"`
	Snapshot *storage.Snapshot `json:"snapshot,omitempty"`
	Before   int               `json:"bytes_before"`
	After    int               `json:"bytes_after"`
}

// Patcher sequences store calls for a single record at a time. It keeps no
// state between calls and may be shared between goroutines when its store
// and snapshot store are.
type Patcher struct {
	store     ledger.AccountStore
	snapshots Snapshots
	logger    *slog.Logger
}

// New creates a patcher. snapshots may be nil, in which case writes are not
// backed up.
func New(store ledger.AccountStore, snapshots Snapshots, logger *slog.Logger) *Patcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Patcher{
		store:     store,
		snapshots: snapshots,
		logger:    logger.With("component", "patcher"),
	}
}

func (p *Patcher) fetch(ctx context.Context, key solana.PublicKey) (*ledger.AccountState, error) {
	state, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	return state, nil
}

// write snapshots the original state and then replaces it.
func (p *Patcher) write(ctx context.Context, key solana.PublicKey, original *ledger.AccountState, next ledger.AccountState, mutation string) (*Result, error) {
	res := &Result{
		Address:  key,
		Mutation: mutation,
		Before:   len(original.Data),
		After:    len(next.Data),
	}
	if p.snapshots != nil {
		snap, err := p.snapshots.Save(key, *original, mutation)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s before %s: %w", key, mutation, err)
		}
		res.Snapshot = snap
	}

	if err := p.store.Set(ctx, key, next); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}

	attrs := []any{"address", key, "mutation", mutation, "bytes", res.After}
	if res.Snapshot != nil {
		attrs = append(attrs, "snapshot", res.Snapshot.ID)
	}
	p.logger.Info("account patched", attrs...)
	return res, nil
}

func (p *Patcher) checkOwner(key solana.PublicKey, state *ledger.AccountState, want ...solana.PublicKey) {
	for _, w := range want {
		if state.Owner.Equals(w) {
			return
		}
	}
	p.logger.Warn("unexpected account owner", "address", key, "owner", state.Owner)
}

// Close empties the account at key and hands it to the system program.
func (p *Patcher) Close(ctx context.Context, key solana.PublicKey) (*Result, error) {
	original, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	res := &Result{Address: key, Mutation: "close", Before: len(original.Data)}
	if p.snapshots != nil {
		snap, err := p.snapshots.Save(key, *original, res.Mutation)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s before close: %w", key, err)
		}
		res.Snapshot = snap
	}
	if err := p.store.Close(ctx, key); err != nil {
		return nil, fmt.Errorf("close %s: %w", key, err)
	}
	p.logger.Info("account closed", "address", key)
	return res, nil
}

// Snapshots lists stored snapshots, optionally for one address.
func (p *Patcher) Snapshots(addr *solana.PublicKey) ([]*storage.Snapshot, error) {
	if p.snapshots == nil {
		return nil, nil
	}
	return p.snapshots.List(addr)
}

// Restore writes a snapshot back to its address. The state being replaced
// is itself snapshotted, so a restore can be undone.
func (p *Patcher) Restore(ctx context.Context, id ksuid.KSUID) (*Result, error) {
	if p.snapshots == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrSnapshotNotFound, id)
	}
	snap, err := p.snapshots.Get(id)
	if err != nil {
		return nil, err
	}

	mutation := "restore " + id.String()
	current, err := p.store.Get(ctx, snap.Address)
	switch {
	case err == nil:
		return p.write(ctx, snap.Address, current, snap.State, mutation)
	case errorsIsAbsent(err):
		if err := p.store.Set(ctx, snap.Address, snap.State); err != nil {
			return nil, fmt.Errorf("write %s: %w", snap.Address, err)
		}
		p.logger.Info("account restored", "address", snap.Address, "snapshot", id)
		return &Result{Address: snap.Address, Mutation: mutation, After: len(snap.State.Data)}, nil
	default:
		return nil, fmt.Errorf("fetch %s: %w", snap.Address, err)
	}
}

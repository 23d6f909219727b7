// Package storage keeps pre-write snapshots of accounts in a local pebble
// database so that any write made by this tool can be undone.
//
// Layout:
//
//	snap/<ksuid(20)>                 -> envelope(address, snapshot value)
//	addr/<address(32)><ksuid(20)>    -> empty
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/ledger"
)

var (
	prefixSnapshot = []byte("snap/")
	prefixAddress  = []byte("addr/")
)

// SnapshotStore is a pebble-backed store of account snapshots. It is safe
// for concurrent use.
type SnapshotStore struct {
	mu     sync.RWMutex
	db     *pebble.DB
	codec  *codec.EnvelopeCodec
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotStore opens (or creates) the database at path.
func NewSnapshotStore(path string, logger *slog.Logger) (*SnapshotStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store at %s: %w", path, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		db:     db,
		codec:  codec.NewEnvelopeCodec(),
		logger: logger.With("component", "snapshots"),
		now:    time.Now,
	}, nil
}

func snapshotKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, prefixSnapshot...), id.Bytes()...)
}

func addressKey(addr solana.PublicKey, id ksuid.KSUID) []byte {
	k := append(append([]byte{}, prefixAddress...), addr.Bytes()...)
	return append(k, id.Bytes()...)
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// Save records state as the current content of addr and returns the stored
// snapshot.
func (s *SnapshotStore) Save(addr solana.PublicKey, state ledger.AccountState, reason string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	takenAt := s.now()
	id, err := ksuid.NewRandomWithTime(takenAt)
	if err != nil {
		return nil, fmt.Errorf("generate snapshot id: %w", err)
	}
	snap := &Snapshot{
		ID:      id,
		Address: addr,
		TakenAt: takenAt,
		Reason:  reason,
		State:   *state.Clone(),
	}

	value, err := encodeSnapshotValue(snap)
	if err != nil {
		return nil, err
	}
	record, err := s.codec.Encode(addr.Bytes(), value, takenAt)
	if err != nil {
		return nil, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(snapshotKey(id), record, nil); err != nil {
		return nil, err
	}
	if err := batch.Set(addressKey(addr, id), nil, nil); err != nil {
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("commit snapshot %s: %w", id, err)
	}

	s.logger.Info("snapshot saved", "id", id, "address", addr, "reason", reason, "bytes", len(state.Data))
	return snap, nil
}

// Get loads one snapshot.
func (s *SnapshotStore) Get(id ksuid.KSUID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.get(id)
}

func (s *SnapshotStore) get(id ksuid.KSUID) (*Snapshot, error) {
	data, closer, err := s.db.Get(snapshotKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	buf := append([]byte{}, data...)
	if err := closer.Close(); err != nil {
		return nil, err
	}

	env, err := s.codec.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	if len(env.Key) != solana.PublicKeyLength {
		return nil, fmt.Errorf("%w: snapshot %s address is %d bytes", codec.ErrSnapshotCorrupt, id, len(env.Key))
	}
	reason, state, err := decodeSnapshotValue(env.Value)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return &Snapshot{
		ID:      id,
		Address: solana.PublicKeyFromBytes(env.Key),
		TakenAt: env.Time(),
		Reason:  reason,
		State:   state,
	}, nil
}

// List returns snapshots oldest first. With a nil addr every snapshot is
// returned, otherwise only those of addr.
func (s *SnapshotStore) List(addr *solana.PublicKey) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	prefix := prefixSnapshot
	if addr != nil {
		prefix = append(append([]byte{}, prefixAddress...), addr.Bytes()...)
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		raw := bytes.TrimPrefix(iter.Key(), prefix)
		id, err := ksuid.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad snapshot key %x: %v", codec.ErrSnapshotCorrupt, iter.Key(), err)
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	snaps := make([]*Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.get(id)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].TakenAt.Before(snaps[j].TakenAt)
	})
	return snaps, nil
}

// Delete removes a snapshot and its address index entry.
func (s *SnapshotStore) Delete(id ksuid.KSUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrStoreClosed
	}

	snap, err := s.get(id)
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(snapshotKey(id), nil); err != nil {
		return err
	}
	if err := batch.Delete(addressKey(snap.Address, id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

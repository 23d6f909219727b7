package storage

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/ledger"
)

// Snapshot is the full state of an account captured before it was
// overwritten.
type Snapshot struct {
	ID      ksuid.KSUID         `json:"id"`
	Address solana.PublicKey    `json:"address"`
	TakenAt time.Time           `json:"taken_at"`
	Reason  string              `json:"reason"`
	State   ledger.AccountState `json:"state"`
}

// encodeSnapshotValue lays out the value stored inside the envelope:
//
//	[lamports(8)][owner(32)][executable(1)][rent_epoch(8)][reason(4+n)][data(4+n)]
func encodeSnapshotValue(s *Snapshot) ([]byte, error) {
	st := s.State
	w := codec.NewWriter(8 + solana.PublicKeyLength + 1 + 8 + 4 + len(s.Reason) + 4 + len(st.Data))
	if err := w.PutU64(st.Lamports, "lamports"); err != nil {
		return nil, err
	}
	if err := w.PutPublicKey(st.Owner, "owner"); err != nil {
		return nil, err
	}
	if err := w.PutBool(st.Executable, "executable"); err != nil {
		return nil, err
	}
	if err := w.PutU64(st.RentEpoch, "rent epoch"); err != nil {
		return nil, err
	}
	if err := w.PutString(s.Reason, "reason"); err != nil {
		return nil, err
	}
	if err := w.PutCount(len(st.Data), "data length"); err != nil {
		return nil, err
	}
	if err := w.PutBytes(st.Data, "data"); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// decodeSnapshotValue is the inverse of encodeSnapshotValue. The returned
// data never aliases buf.
func decodeSnapshotValue(buf []byte) (string, ledger.AccountState, error) {
	var st ledger.AccountState
	r := codec.NewReader(buf, 0, codec.ErrSnapshotCorrupt)

	var err error
	if st.Lamports, err = r.U64("lamports"); err != nil {
		return "", st, err
	}
	if st.Owner, err = r.PublicKey("owner"); err != nil {
		return "", st, err
	}
	if st.Executable, err = r.Bool("executable"); err != nil {
		return "", st, err
	}
	if st.RentEpoch, err = r.U64("rent epoch"); err != nil {
		return "", st, err
	}
	reason, err := r.String("reason")
	if err != nil {
		return "", st, err
	}
	n, err := r.Count("data length", 1)
	if err != nil {
		return "", st, err
	}
	data, err := r.Bytes(n, "data")
	if err != nil {
		return "", st, err
	}
	if r.Remaining() != 0 {
		return "", st, fmt.Errorf("%w: %d trailing bytes after snapshot", codec.ErrSnapshotCorrupt, r.Remaining())
	}
	st.Data = append([]byte{}, data...)
	return reason, st, nil
}

package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeData(t *testing.T) {
	payload := []byte{1, 0, 255, 3}
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("valid pair", func(t *testing.T) {
		data, err := DecodeData([]string{encoded, "base64"})
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	tests := []struct {
		name string
		pair []string
	}{
		{"missing encoding", []string{encoded}},
		{"wrong encoding", []string{encoded, "base58"}},
		{"not base64", []string{"!!!", "base64"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeData(tt.pair)
			assert.ErrorIs(t, err, ErrStoreUnavailable)
		})
	}
}

func TestEncodeData(t *testing.T) {
	assert.Equal(t, "01ff00", EncodeData([]byte{0x01, 0xff, 0x00}))
	assert.Equal(t, "", EncodeData(nil))
}

func TestRemoteErrorIsUnavailable(t *testing.T) {
	var err error = &RemoteError{Code: -32602, Message: "invalid params"}
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.False(t, errors.Is(err, ErrRecordAbsent))
	assert.Contains(t, err.Error(), "-32602")
}

func TestClosedState(t *testing.T) {
	s := ClosedState()
	assert.Zero(t, s.Lamports)
	assert.Empty(t, s.Data)
	assert.Equal(t, solana.SystemProgramID, s.Owner)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, ErrRecordAbsent)

	data := []byte{1, 2, 3}
	require.NoError(t, store.Set(ctx, key, AccountState{Lamports: 10, Data: data, Owner: solana.TokenProgramID}))
	data[0] = 9

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Data, "store must not alias caller buffers")

	got.Data[1] = 9
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again.Data)

	require.NoError(t, store.Close(ctx, key))
	closed, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, closed.Owner)
	assert.Empty(t, closed.Data)

	gets, sets := store.Calls()
	assert.Equal(t, 4, gets)
	assert.Equal(t, 2, sets)
}

func TestAccountStateWithData(t *testing.T) {
	s := &AccountState{Lamports: 5, Data: []byte{1}, Owner: solana.TokenProgramID, RentEpoch: 7}
	n := s.WithData([]byte{2, 3})
	assert.Equal(t, []byte{2, 3}, n.Data)
	assert.Equal(t, []byte{1}, s.Data)
	assert.Equal(t, s.Lamports, n.Lamports)
	assert.Equal(t, s.RentEpoch, n.RentEpoch)
}

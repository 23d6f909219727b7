// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/patcher"
	"github.com/ssargent/surfpatch/pkg/storage"
)

// AccountPatcher is the set of operations the API exposes
type AccountPatcher interface {
	InspectCore(ctx context.Context, key solana.PublicKey, want codec.Key) (*patcher.CoreView, error)
	SetAssetOwner(ctx context.Context, key, owner solana.PublicKey) (*patcher.Result, error)
	SetCollectionAuthority(ctx context.Context, key, authority solana.PublicKey) (*patcher.Result, error)
	InspectTokenRecord(ctx context.Context, key solana.PublicKey) (*codec.TokenRecord, error)
	InspectTokenAccount(ctx context.Context, key solana.PublicKey) (*codec.TokenAccount, error)
	Snapshots(addr *solana.PublicKey) ([]*storage.Snapshot, error)
	Restore(ctx context.Context, id ksuid.KSUID) (*patcher.Result, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, p AccountPatcher, config ServerConfig, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

// Package rpc implements ledger.AccountStore against a surfnet validator's
// JSON-RPC endpoint.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/ssargent/surfpatch/pkg/ledger"
)

const (
	// DefaultEndpoint is where a local surfnet listens.
	DefaultEndpoint = "http://localhost:8899"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 30 * time.Second

	methodGetAccountInfo = "getAccountInfo"
	methodSetAccount     = "surfnet_setAccount"
)

// Options configures a Client.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	Logger   *slog.Logger
	Metrics  *Metrics
}

// Client is a ledger.AccountStore backed by JSON-RPC. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	endpoint string
	rpc      *solanarpc.Client
	logger   *slog.Logger
	metrics  *Metrics
}

var _ ledger.AccountStore = (*Client)(nil)

// NewClient creates a client for opts.Endpoint.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	transport := jsonrpc.NewClientWithOpts(opts.Endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	})
	return &Client{
		endpoint: opts.Endpoint,
		rpc:      solanarpc.NewWithCustomRPCClient(transport),
		logger:   opts.Logger.With("component", "rpc"),
		metrics:  opts.Metrics,
	}
}

// Endpoint returns the URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type accountInfoResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value *accountInfoValue `json:"value"`
}

type accountInfoValue struct {
	Lamports   uint64   `json:"lamports"`
	Data       []string `json:"data"`
	Owner      string   `json:"owner"`
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

type setAccountParams struct {
	Data       string `json:"data"`
	Executable bool   `json:"executable"`
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// Get fetches the account at key. A null value is ErrRecordAbsent and no
// decoding is attempted.
func (c *Client) Get(ctx context.Context, key solana.PublicKey) (*ledger.AccountState, error) {
	var out accountInfoResult
	params := []interface{}{
		key.String(),
		map[string]string{"encoding": ledger.EncodingBase64},
	}
	elapsed, err := c.call(ctx, methodGetAccountInfo, key, &out, params)
	if err != nil {
		return nil, err
	}
	if out.Value == nil {
		c.metrics.record(methodGetAccountInfo, outcomeAbsent, elapsed)
		c.logger.Debug("account absent", "address", key, "slot", out.Context.Slot)
		return nil, ledger.ErrRecordAbsent
	}

	data, err := ledger.DecodeData(out.Value.Data)
	if err != nil {
		c.metrics.record(methodGetAccountInfo, outcomeError, elapsed)
		return nil, fmt.Errorf("%s %s: %w", methodGetAccountInfo, key, err)
	}
	owner, err := solana.PublicKeyFromBase58(out.Value.Owner)
	if err != nil {
		c.metrics.record(methodGetAccountInfo, outcomeError, elapsed)
		return nil, fmt.Errorf("%w: %s %s: owner %q: %v", ledger.ErrStoreUnavailable, methodGetAccountInfo, key, out.Value.Owner, err)
	}

	c.metrics.record(methodGetAccountInfo, outcomeSuccess, elapsed)
	c.logger.Debug("account fetched", "address", key, "slot", out.Context.Slot, "bytes", len(data))
	return &ledger.AccountState{
		Lamports:   out.Value.Lamports,
		Data:       data,
		Owner:      owner,
		Executable: out.Value.Executable,
		RentEpoch:  out.Value.RentEpoch,
	}, nil
}

// Set overwrites the account at key with state.
func (c *Client) Set(ctx context.Context, key solana.PublicKey, state ledger.AccountState) error {
	params := []interface{}{
		key.String(),
		setAccountParams{
			Data:       ledger.EncodeData(state.Data),
			Executable: state.Executable,
			Lamports:   state.Lamports,
			Owner:      state.Owner.String(),
			RentEpoch:  state.RentEpoch,
		},
	}
	var out interface{}
	elapsed, err := c.call(ctx, methodSetAccount, key, &out, params)
	if err != nil {
		return err
	}
	c.metrics.record(methodSetAccount, outcomeSuccess, elapsed)
	c.logger.Info("account written", "address", key, "bytes", len(state.Data), "owner", state.Owner)
	return nil
}

// Close empties the account at key and hands it to the system program.
func (c *Client) Close(ctx context.Context, key solana.PublicKey) error {
	return c.Set(ctx, key, ledger.ClosedState())
}

// call performs one round trip. Failures are counted here; callers count
// the outcome of successful round trips.
func (c *Client) call(ctx context.Context, method string, key solana.PublicKey, out interface{}, params []interface{}) (time.Duration, error) {
	start := time.Now()
	c.logger.Debug("rpc call", "method", method, "address", key)

	err := c.rpc.RPCCallForInto(ctx, out, method, params)
	elapsed := time.Since(start)
	if err == nil {
		return elapsed, nil
	}
	c.metrics.record(method, outcomeError, elapsed)

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		c.logger.Warn("rpc error", "method", method, "address", key, "code", rpcErr.Code, "message", rpcErr.Message)
		return elapsed, fmt.Errorf("%s %s: %w", method, key, &ledger.RemoteError{Code: rpcErr.Code, Message: rpcErr.Message})
	}
	c.logger.Warn("rpc transport failure", "method", method, "address", key, "error", err)
	return elapsed, fmt.Errorf("%w: %s %s: %w", ledger.ErrStoreUnavailable, method, key, err)
}

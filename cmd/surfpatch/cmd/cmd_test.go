package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/api"
	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/config"
	"github.com/ssargent/surfpatch/pkg/di"
	"github.com/ssargent/surfpatch/pkg/ledger"
	"github.com/ssargent/surfpatch/pkg/patcher"
)

type cliEnv struct {
	store      *ledger.MemoryStore
	container  *di.Container
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(tmpDir, "data")
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	store := ledger.NewMemoryStore()
	c := di.NewContainer()
	c.SetAccountStore(store)
	c.SetMetricsRegistry(prometheus.NewRegistry())
	t.Cleanup(func() {
		_ = c.Close()
		SetContainer(nil)
		slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	})
	return &cliEnv{store: store, container: c, configPath: configPath}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with the env's config file and returns everything
// written to stdout and stderr.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	SetContainer(e.container)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.configPath, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func key(seed byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = seed + byte(i)
	}
	return pk
}

func (e *cliEnv) put(t *testing.T, k solana.PublicKey, owner solana.PublicKey, data []byte) {
	t.Helper()
	require.NoError(t, e.store.Set(context.Background(), k, ledger.AccountState{Lamports: 1_000_000, Data: data, Owner: owner}))
}

func (e *cliEnv) data(t *testing.T, k solana.PublicKey) []byte {
	t.Helper()
	state, err := e.store.Get(context.Background(), k)
	require.NoError(t, err)
	return state.Data
}

func assetData(t *testing.T, owner solana.PublicKey) []byte {
	t.Helper()
	data, err := (&codec.AssetHeader{
		Owner:           owner,
		UpdateAuthority: codec.UpdateAuthority{Kind: codec.UpdateAuthorityAddress, Address: key(2)},
		Name:            "Break",
		URI:             "https://example.com/break.json",
	}).Encode()
	require.NoError(t, err)
	return data
}

func TestAssetCommands(t *testing.T) {
	env := newCLIEnv(t)
	asset := key(10)
	original := assetData(t, key(1))
	env.put(t, asset, patcher.CoreProgramID, original)

	t.Run("show", func(t *testing.T) {
		out, err := env.run(t, "asset", "show", asset.String())
		require.NoError(t, err)
		assert.Contains(t, out, "AssetV1 "+asset.String())
		assert.Contains(t, out, key(1).String())
		assert.Contains(t, out, "Break")
	})

	t.Run("show json", func(t *testing.T) {
		out, err := env.run(t, "--json", "asset", "show", asset.String())
		require.NoError(t, err)
		var view map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "AssetV1", view["kind"])
	})

	t.Run("set-owner", func(t *testing.T) {
		out, err := env.run(t, "asset", "set-owner", asset.String(), key(3).String())
		require.NoError(t, err)
		assert.Contains(t, out, asset.String())

		data := env.data(t, asset)
		require.Len(t, data, len(original))
		header, _, err := codec.DecodeAssetHeader(data)
		require.NoError(t, err)
		assert.Equal(t, key(3), header.Owner)
	})

	t.Run("set-authority into collection", func(t *testing.T) {
		_, err := env.run(t, "asset", "set-authority", asset.String(), key(4).String(), "--collection")
		require.NoError(t, err)

		header, _, err := codec.DecodeAssetHeader(env.data(t, asset))
		require.NoError(t, err)
		assert.Equal(t, codec.UpdateAuthorityCollection, header.UpdateAuthority.Kind)
		assert.Equal(t, key(4), header.UpdateAuthority.Address)
	})

	t.Run("collection show rejects an asset", func(t *testing.T) {
		_, err := env.run(t, "collection", "show", asset.String())
		assert.ErrorIs(t, err, codec.ErrMalformedHeader)
	})
}

func TestInvalidKeysNeverReachTheStore(t *testing.T) {
	env := newCLIEnv(t)

	tests := [][]string{
		{"asset", "show", "not-a-key"},
		{"asset", "set-owner", key(1).String(), "0OIl"},
		{"token-record", "show", "--mint", key(1).String(), "--wallet", "short"},
		{"token-account", "set-amount", "bad", "5"},
		{"close", "xyz"},
		{"snapshot", "list", "nope"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := env.run(t, args...)
			assert.ErrorIs(t, err, address.ErrInvalidKey)
		})
	}

	gets, sets := env.store.Calls()
	assert.Zero(t, gets)
	assert.Zero(t, sets)
}

func TestAbsentAccount(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "token-account", "show", key(50).String())
	assert.ErrorIs(t, err, ledger.ErrRecordAbsent)

	_, sets := env.store.Calls()
	assert.Zero(t, sets)
}

func TestTokenRecordCommands(t *testing.T) {
	env := newCLIEnv(t)
	mint, wallet := key(20), key(21)
	recordKey, err := address.TokenRecordForWallet(wallet, mint)
	require.NoError(t, err)

	delegate := key(22)
	role := codec.DelegateRoleUtility
	data, err := (&codec.TokenRecord{
		Key:            codec.TokenRecordKey,
		Bump:           254,
		State:          codec.TokenStateLocked,
		Delegate:       &delegate,
		DelegateRole:   &role,
		LockedTransfer: &delegate,
	}).Encode()
	require.NoError(t, err)
	env.put(t, recordKey, solana.TokenMetadataProgramID, data)

	out, err := env.run(t, "token-record", "show", "--mint", mint.String(), "--wallet", wallet.String())
	require.NoError(t, err)
	assert.Contains(t, out, "TokenRecord "+recordKey.String())
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "utility")

	_, err = env.run(t, "token-record", "show", recordKey.String(), "--mint", mint.String())
	assert.Error(t, err)

	_, err = env.run(t, "token-record", "set-state", recordKey.String(), "unlocked", "--clear-delegate")
	require.NoError(t, err)

	patched := env.data(t, recordKey)
	require.Len(t, patched, codec.TokenRecordWidth)
	tr, err := codec.DecodeTokenRecord(patched)
	require.NoError(t, err)
	assert.Equal(t, codec.TokenStateUnlocked, tr.State)
	assert.Nil(t, tr.Delegate)
	assert.Nil(t, tr.DelegateRole)
	assert.Nil(t, tr.LockedTransfer)
	assert.Equal(t, uint8(254), tr.Bump)

	_, err = env.run(t, "token-record", "set-state", recordKey.String(), "melted")
	assert.Error(t, err)
}

func TestTokenAccountCommands(t *testing.T) {
	env := newCLIEnv(t)
	mint, wallet := key(30), key(31)
	ata, err := address.AssociatedToken(wallet, mint)
	require.NoError(t, err)

	data, err := (&codec.TokenAccount{
		Mint:   mint,
		Owner:  wallet,
		Amount: 1,
		State:  codec.AccountStateInitialized,
	}).Encode()
	require.NoError(t, err)
	env.put(t, ata, solana.TokenProgramID, data)

	out, err := env.run(t, "token-account", "show", "--mint", mint.String(), "--wallet", wallet.String())
	require.NoError(t, err)
	assert.Contains(t, out, "TokenAccount "+ata.String())
	assert.Contains(t, out, "initialized")

	_, err = env.run(t, "token-account", "set-amount", ata.String(), "42")
	require.NoError(t, err)
	_, err = env.run(t, "token-account", "set-state", ata.String(), "frozen")
	require.NoError(t, err)
	_, err = env.run(t, "token-account", "set-owner", ata.String(), key(32).String())
	require.NoError(t, err)

	ta, err := codec.DecodeTokenAccount(env.data(t, ata))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ta.Amount)
	assert.Equal(t, codec.AccountStateFrozen, ta.State)
	assert.Equal(t, key(32), ta.Owner)

	_, err = env.run(t, "token-account", "set-amount", ata.String(), "-1")
	assert.Error(t, err)
	_, err = env.run(t, "token-account", "set-state", ata.String(), "uninitialized")
	assert.Error(t, err)
}

func TestCloseAndSnapshotRestore(t *testing.T) {
	env := newCLIEnv(t)
	asset := key(40)
	original := assetData(t, key(1))
	env.put(t, asset, patcher.CoreProgramID, original)

	_, err := env.run(t, "close", asset.String())
	require.NoError(t, err)

	closed, err := env.store.Get(context.Background(), asset)
	require.NoError(t, err)
	assert.Empty(t, closed.Data)
	assert.Equal(t, solana.SystemProgramID, closed.Owner)

	out, err := env.run(t, "--json", "snapshot", "list", asset.String())
	require.NoError(t, err)
	var snaps []struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)

	out, err = env.run(t, "snapshot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, snaps[0].ID)

	_, err = env.run(t, "snapshot", "restore", snaps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, original, env.data(t, asset))

	_, err = env.run(t, "snapshot", "restore", "not-a-ksuid")
	assert.Error(t, err)
}

func TestResolveConfig(t *testing.T) {
	env := newCLIEnv(t)

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv(config.EnvRPCURL, "http://127.0.0.1:9999")
		_, err := env.run(t, "snapshot", "list")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9999", env.container.GetConfig().RPCURL)
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		t.Setenv(config.EnvRPCURL, "http://127.0.0.1:9999")
		_, err := env.run(t, "--rpc-url", "http://127.0.0.1:7777", "snapshot", "list")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:7777", env.container.GetConfig().RPCURL)
	})

	t.Run("invalid rpc url", func(t *testing.T) {
		_, err := env.run(t, "--rpc-url", "ftp://nowhere", "snapshot", "list")
		assert.Error(t, err)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		missing := &cliEnv{store: env.store, container: env.container, configPath: filepath.Join(t.TempDir(), "absent.yaml")}
		_, err := missing.run(t, "snapshot", "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "surfpatch init")
	})
}

func TestInitCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.configPath = filepath.Join(t.TempDir(), "nested", "config.yaml")
	dataDir := filepath.Join(t.TempDir(), "data")

	out, err := env.run(t, "init", "--data-dir", dataDir, "--rpc-url", "http://127.0.0.1:8898")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written")

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "http://127.0.0.1:8898", cfg.RPCURL)
	assert.Len(t, cfg.Security.APIKey, 64)

	out, err = env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	again, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Security.APIKey, again.Security.APIKey)

	_, err = env.run(t, "init", "--force")
	require.NoError(t, err)
	forced, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, forced.Security.APIKey)
}

type recordingStarter struct {
	config api.ServerConfig
	called bool
}

func (s *recordingStarter) StartServer(ctx context.Context, p api.AccountPatcher, config api.ServerConfig, logger *slog.Logger) error {
	s.called = true
	s.config = config
	return nil
}

type recordingFactory struct{ starter *recordingStarter }

func (f recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	env := newCLIEnv(t)
	starter := &recordingStarter{}
	env.container.SetServerFactory(recordingFactory{starter: starter})

	t.Run("flags override config", func(t *testing.T) {
		_, err := env.run(t, "serve", "--port", "9100", "--api-key", "k")
		require.NoError(t, err)
		require.True(t, starter.called)
		assert.Equal(t, 9100, starter.config.Port)
		assert.Equal(t, "k", starter.config.APIKey)
		assert.Equal(t, "127.0.0.1", starter.config.Bind)
	})

	t.Run("auto api key is generated", func(t *testing.T) {
		out, err := env.run(t, "serve")
		require.NoError(t, err)
		assert.Contains(t, out, "Generated API key")
		assert.Len(t, starter.config.APIKey, 64)
		assert.NotEqual(t, config.AutoAPIKey, starter.config.APIKey)
	})
}

// Package di provides dependency injection container
package di

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/surfpatch/pkg/api" //nolint:depguard
	"github.com/ssargent/surfpatch/pkg/config"
	"github.com/ssargent/surfpatch/pkg/ledger"
	"github.com/ssargent/surfpatch/pkg/patcher"
	"github.com/ssargent/surfpatch/pkg/rpc"
	"github.com/ssargent/surfpatch/pkg/storage"
)

// snapshotDir is the pebble directory under the configured data dir.
const snapshotDir = "snapshots"

// Container holds all the dependencies for the application. Components are
// built on first use from the configuration and cached.
type Container struct {
	mu sync.Mutex

	config   *config.Config
	logger   *slog.Logger
	registry prometheus.Registerer

	accountStore  ledger.AccountStore
	snapshotStore *storage.SnapshotStore
	patcher       *patcher.Patcher
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		config:        config.DefaultConfig(),
		logger:        slog.Default(),
		serverFactory: api.NewServerFactory(),
	}
}

// Configure sets the configuration and logger the components are built
// from. It has no effect on components that already exist.
func (c *Container) Configure(cfg *config.Config, logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg != nil {
		c.config = cfg
	}
	if logger != nil {
		c.logger = logger
	}
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// SetMetricsRegistry sets where the RPC metrics are registered. Defaults to
// the prometheus default registerer.
func (c *Container) SetMetricsRegistry(reg prometheus.Registerer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry = reg
}

// GetAccountStore returns the account store, a JSON-RPC client for the
// configured endpoint unless one was injected.
func (c *Container) GetAccountStore() ledger.AccountStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountStoreLocked()
}

func (c *Container) accountStoreLocked() ledger.AccountStore {
	if c.accountStore == nil {
		c.accountStore = rpc.NewClient(rpc.Options{
			Endpoint: c.config.RPCURL,
			Timeout:  c.config.RequestTimeout,
			Logger:   c.logger,
			Metrics:  rpc.NewMetrics(c.registry),
		})
	}
	return c.accountStore
}

// SetAccountStore allows overriding the account store (for testing)
func (c *Container) SetAccountStore(store ledger.AccountStore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountStore = store
	c.patcher = nil
}

// GetSnapshotStore opens the snapshot store under the data dir
func (c *Container) GetSnapshotStore() (*storage.SnapshotStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotStoreLocked()
}

func (c *Container) snapshotStoreLocked() (*storage.SnapshotStore, error) {
	if c.snapshotStore != nil {
		return c.snapshotStore, nil
	}
	store, err := storage.NewSnapshotStore(filepath.Join(c.config.DataDir, snapshotDir), c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	c.snapshotStore = store
	return store, nil
}

// GetPatcher returns the patcher wired to the account and snapshot stores
func (c *Container) GetPatcher() (*patcher.Patcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.patcher != nil {
		return c.patcher, nil
	}
	snapshots, err := c.snapshotStoreLocked()
	if err != nil {
		return nil, err
	}
	c.patcher = patcher.New(c.accountStoreLocked(), snapshots, c.logger)
	return c.patcher, nil
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverFactory = factory
}

// Close releases the snapshot store. The container can be reused afterwards;
// the store is reopened on next use.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	if c.snapshotStore != nil {
		if err := c.snapshotStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close snapshot store: %w", err))
		}
		c.snapshotStore = nil
		c.patcher = nil
	}
	return errors.Join(errs...)
}

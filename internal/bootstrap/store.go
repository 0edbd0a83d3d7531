// Package bootstrap wires configuration into concrete backends. It is
// shared by the server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"freshsave/internal/config"
	"freshsave/internal/domain/inventory"
	"freshsave/internal/infrastructure/appwrite"
	"freshsave/internal/infrastructure/storage/badgerstore"
	"freshsave/internal/infrastructure/storage/docstore"
	"freshsave/internal/infrastructure/storage/inventory_repo"
	"freshsave/internal/infrastructure/storage/memstore"
	"freshsave/internal/infrastructure/storage/postgres"
	"freshsave/pkg/logger"
)

// PingableStore is a document store that can report its health.
type PingableStore interface {
	docstore.Store
	docstore.Pinger
}

// Backend is an opened document store plus its release func.
type Backend struct {
	Store  PingableStore
	Driver string
	close  func()
}

// Close releases the backend's resources.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// OpenStore opens the document store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warnw("using in-memory store, data is lost on exit")
		return &Backend{Store: memstore.New(), Driver: cfg.Store.Driver}, nil

	case config.DriverBadger:
		store, err := badgerstore.Open(cfg.Badger.Path)
		if err != nil {
			return nil, err
		}
		log.Infow("badger store opened", "path", cfg.Badger.Path)
		return &Backend{Store: store, Driver: cfg.Store.Driver, close: func() {
			if err := store.Close(); err != nil {
				log.Errorw("failed to close badger store", "error", err)
			}
		}}, nil

	case config.DriverPostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.Postgres.DSN)
		if cfg.Postgres.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Postgres.MaxConns
		}
		if cfg.Postgres.MinConns > 0 {
			poolCfg.MinConns = cfg.Postgres.MinConns
		}

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		pool, err := postgres.NewPool(connectCtx, poolCfg)
		if err != nil {
			return nil, err
		}
		store := postgres.NewDocumentStore(pool)
		if err := store.EnsureSchema(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		postgres.LogPoolStats(ctx, pool)
		return &Backend{Store: store, Driver: cfg.Store.Driver, close: pool.Close}, nil

	case config.DriverAppwrite:
		client, err := appwrite.New(appwrite.Config{
			Endpoint:   cfg.Appwrite.Endpoint,
			ProjectID:  cfg.Appwrite.ProjectID,
			APIKey:     cfg.Appwrite.APIKey,
			DatabaseID: cfg.Store.DatabaseID,
			SelfSigned: cfg.Appwrite.SelfSigned,
			Timeout:    cfg.Appwrite.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Appwrite.SelfSigned {
			log.Warnw("accepting self-signed certificates from appwrite", "endpoint", cfg.Appwrite.Endpoint)
		}
		return &Backend{Store: client, Driver: cfg.Store.Driver}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// NewRepository builds the inventory repository over an opened backend.
func NewRepository(b *Backend, cfg *config.Config, log *logger.Logger) *inventory_repo.Repo {
	return inventory_repo.New(b.Store, inventory_repo.Config{
		CollectionID:       cfg.Store.CollectionID,
		ExpiringWindowDays: cfg.Inventory.ExpiringWindowDays,
	}, inventory_repo.WithLogger(log))
}

// Compile-time checks that every backend can back a server.
var (
	_ inventory.Repository = (*inventory_repo.Repo)(nil)
	_ PingableStore        = (*memstore.Store)(nil)
	_ PingableStore        = (*badgerstore.Store)(nil)
	_ PingableStore        = (*postgres.DocumentStore)(nil)
	_ PingableStore        = (*appwrite.Client)(nil)
)

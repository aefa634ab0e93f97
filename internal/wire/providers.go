package wire

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cookinghub/internal/account"
	accountcache "cookinghub/internal/account/cache"
	accountgorm "cookinghub/internal/account/gormdb"
	accountmemory "cookinghub/internal/account/memory"
	accountmongo "cookinghub/internal/account/mongo"
	"cookinghub/internal/blob"
	blobgridfs "cookinghub/internal/blob/gridfs"
	blobmemory "cookinghub/internal/blob/memory"
	"cookinghub/internal/common"
	"cookinghub/internal/config"
	"cookinghub/internal/dbmongo"
	"cookinghub/internal/dbmysql"
	"cookinghub/internal/ledger"
	ledgergorm "cookinghub/internal/ledger/gormdb"
	ledgermemory "cookinghub/internal/ledger/memory"
	ledgermongo "cookinghub/internal/ledger/mongo"
	"cookinghub/internal/media"
	"cookinghub/internal/query"
)

type Application struct {
	Config      *config.Config
	Log         *zap.Logger
	Backend     *Backend
	Directory   *account.Directory
	Ledger      *ledger.Ledger
	Query       *query.Service
	MediaServer *media.HTTPServer
}

// Backend is the set of stores selected by config.Storage.Backend.
type Backend struct {
	Blobs        blob.Store
	Accounts     account.Store
	Interactions ledger.Store

	// Mongo is nil for the memory backend.
	Mongo *dbmongo.MongoClient
}

func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := common.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideBackend opens the configured storage. The mysql backend keeps
// account and interaction rows in MySQL and the media bytes in GridFS.
func ProvideBackend(cfg *config.Config, log *zap.Logger) (*Backend, func(), error) {
	var (
		backend *Backend
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = &Backend{
			Blobs:        blobmemory.NewInMemory(),
			Accounts:     accountmemory.NewInMemory(),
			Interactions: ledgermemory.NewInMemory(nil),
		}

	case config.BackendMongo, config.BackendMySQL:
		mongoClient, err := connectMongo(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout())
			defer cancel()
			if err := mongoClient.Close(ctx); err != nil {
				log.Warn("Failed to disconnect MongoDB", zap.Error(err))
			}
		})

		backend = &Backend{
			Blobs: blobgridfs.NewGridFS(mongoClient.GridFS),
			Mongo: mongoClient,
		}

		if cfg.Storage.Backend == config.BackendMongo {
			backend.Accounts = accountmongo.NewMongo(mongoClient.Database)
			backend.Interactions = ledgermongo.NewMongo(mongoClient.Database)
			break
		}

		db, err := dbmysql.NewMySQL(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		backend.Accounts = accountgorm.NewGorm(db)
		backend.Interactions = ledgergorm.NewGorm(db, nil)

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if ttl := cfg.AccountCacheTTL(); ttl > 0 {
		cached := accountcache.NewInCache(backend.Accounts, ttl)
		closers = append(closers, cached.(*accountcache.Cache).Close)
		backend.Accounts = cached
	}

	log.Info("Storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Duration("account_cache_ttl", cfg.AccountCacheTTL()),
	)
	return backend, cleanup, nil
}

func connectMongo(cfg *config.Config) (*dbmongo.MongoClient, error) {
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout())
	defer cancel()
	if err := dbmongo.EnsureIndexes(ctx, client.Database); err != nil {
		_ = client.Close(context.Background())
		return nil, err
	}
	return client, nil
}

func ProvideBlobs(b *Backend) blob.Store {
	return b.Blobs
}

func ProvideAccountStore(b *Backend) account.Store {
	return b.Accounts
}

func ProvideInteractionStore(b *Backend) ledger.Store {
	return b.Interactions
}

func ProvideQueryBlobs(store blob.Store) query.Blobs {
	return store
}

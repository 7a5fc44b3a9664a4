package save

import (
	"fmt"
	"time"

	"github.com/annel0/marble/internal/config"
	"github.com/annel0/marble/internal/logging"
)

// Open создаёт хранилище по конфигурации. При включённом storage.cache
// постоянное хранилище оборачивается Redis-кешем.
func Open(cfg config.StorageConfig) (Store, error) {
	store, err := openBackend(cfg)
	if err != nil || !cfg.Cache.Enabled {
		return store, err
	}

	hot, err := NewRedisStore(RedisOptions{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   "marble:scene-cache:",
		TTL:      cfg.Cache.GetTTL(),
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("кеш сохранений: %w", err)
	}
	return NewCachedStore(store, hot, logging.GetStorageLogger()), nil
}

func openBackend(cfg config.StorageConfig) (Store, error) {
	switch backend := cfg.GetBackend(); backend {
	case config.StorageFile:
		return NewFileStore(cfg.GetPath())
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageBadger:
		return NewBadgerStore(cfg.GetPath())
	case config.StorageRedis:
		return NewRedisStore(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      time.Duration(cfg.Redis.TTLHours) * time.Hour,
		})
	case config.StorageMaria:
		return NewMariaStore(cfg.Maria.DSN())
	case config.StorageMongo:
		return NewMongoStore(MongoOptions{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", backend)
	}
}

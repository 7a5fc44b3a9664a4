package save

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/annel0/marble/internal/logging"
)

// CachedStore — двухуровневое хранилище: быстрый кеш (обычно Redis) перед
// постоянным хранилищем. Запись идёт в постоянное хранилище, затем в кеш;
// чтение сначала пробует кеш и заполняет его при промахе.
// Ошибки кеша не прерывают операцию: постоянное хранилище остаётся источником истины.
type CachedStore struct {
	cold   Store
	hot    Store
	logger *logging.Logger

	hits   int64
	misses int64
}

// CacheStats содержит счётчики кеша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCachedStore оборачивает cold кешем hot
func NewCachedStore(cold, hot Store, logger *logging.Logger) *CachedStore {
	if logger == nil {
		logger = logging.NewConsoleLogger("save-cache")
	}
	return &CachedStore{cold: cold, hot: hot, logger: logger}
}

func (c *CachedStore) Save(ctx context.Context, name string, data []byte) error {
	if err := c.cold.Save(ctx, name, data); err != nil {
		return err
	}
	if err := c.hot.Save(ctx, name, data); err != nil {
		c.logger.Warn("Кеш: не удалось записать %s: %v", name, err)
	}
	return nil
}

func (c *CachedStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := c.hot.Load(ctx, name)
	if err == nil {
		atomic.AddInt64(&c.hits, 1)
		return data, nil
	}
	if !errors.Is(err, ErrSceneNotFound) {
		c.logger.Warn("Кеш: ошибка чтения %s: %v", name, err)
	}
	atomic.AddInt64(&c.misses, 1)

	data, err = c.cold.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.hot.Save(ctx, name, data); err != nil {
		c.logger.Warn("Кеш: не удалось заполнить %s: %v", name, err)
	}
	return data, nil
}

// List всегда читает постоянное хранилище: кеш может содержать не все сохранения
func (c *CachedStore) List(ctx context.Context) ([]string, error) {
	return c.cold.List(ctx)
}

func (c *CachedStore) Delete(ctx context.Context, name string) error {
	if err := c.hot.Delete(ctx, name); err != nil && !errors.Is(err, ErrSceneNotFound) {
		c.logger.Warn("Кеш: не удалось удалить %s: %v", name, err)
	}
	return c.cold.Delete(ctx, name)
}

// Stats возвращает счётчики попаданий и промахов
func (c *CachedStore) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}

func (c *CachedStore) Close() error {
	hotErr := c.hot.Close()
	if err := c.cold.Close(); err != nil {
		return err
	}
	return hotErr
}

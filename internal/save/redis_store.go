package save

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore хранит сохранения в Redis под ключами <prefix><name>
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration // 0 — без срока хранения
}

// RedisOptions — параметры подключения RedisStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = "marble:scene:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisStoreWithClient создаёт хранилище поверх готового клиента
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(name string) string {
	return r.keyPrefix + name
}

func (r *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(name), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения сцены %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err == redis.Nil {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки сцены %s: %w", name, err)
	}
	return data, nil
}

// List использует SCAN, чтобы не блокировать Redis командой KEYS
func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, iter.Val()[len(r.keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка сцен: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	deleted, err := r.client.Del(ctx, r.key(name)).Result()
	if err != nil {
		return fmt.Errorf("ошибка удаления сцены %s: %w", name, err)
	}
	if deleted == 0 {
		return notFound(name)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

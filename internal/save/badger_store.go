package save

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

const badgerPrefix = "scene:"

// BadgerStore хранит сохранения во встроенной базе BadgerDB
type BadgerStore struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStore открывает базу в каталоге <dataPath>/scenes.
// Пустой dataPath открывает базу в памяти.
func NewBadgerStore(dataPath string) (*BadgerStore, error) {
	var opts badger.Options
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataPath, "scenes"))
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return &BadgerStore{db: db, isReady: true}, nil
}

func (b *BadgerStore) ready() error {
	if !b.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return nil
}

func (b *BadgerStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if err := b.ready(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения сцены %s: %w", name, err)
	}
	return nil
}

func (b *BadgerStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if err := b.ready(); err != nil {
		return nil, err
	}

	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки сцены %s: %w", name, err)
	}
	return data, nil
}

// List обходит ключи с префиксом сцен; порядок ключей в Badger лексикографический
func (b *BadgerStore) List(ctx context.Context) ([]string, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if err := b.ready(); err != nil {
		return nil, err
	}

	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка сцен: %w", err)
	}
	return names, nil
}

func (b *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if err := b.ready(); err != nil {
		return err
	}

	key := []byte(badgerPrefix + name)
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return notFound(name)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// Close закрывает базу; повторный вызов безопасен
func (b *BadgerStore) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if !b.isReady {
		return nil
	}
	b.isReady = false
	return b.db.Close()
}

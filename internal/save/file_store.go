package save

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileExt — расширение файлов сохранений
const FileExt = ".save"

// FileStore хранит каждое сохранение в отдельном файле <dir>/<name>.save
type FileStore struct {
	dir string
}

// NewFileStore создаёт хранилище в каталоге dir, создавая каталог при необходимости
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог сохранений %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir возвращает каталог хранилища
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name+FileExt)
}

// Save пишет во временный файл и переименовывает его, чтобы не оставить обрезанное сохранение
func (f *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания файла сохранения %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи сохранения %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи сохранения %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name)); err != nil {
		return fmt.Errorf("ошибка записи сохранения %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сохранения %s: %w", name, err)
	}
	return data, nil
}

func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога %s: %w", f.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), FileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(name)
	}
	return err
}

func (f *FileStore) Close() error { return nil }

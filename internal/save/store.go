package save

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSceneNotFound возвращается, если сохранение с таким именем отсутствует
	ErrSceneNotFound = errors.New("сохранение не найдено")
	// ErrInvalidName возвращается для пустых имён и имён с разделителями пути
	ErrInvalidName = errors.New("недопустимое имя сохранения")
)

// Store определяет хранилище закодированных сохранений сцены.
// Реализации оперируют непрозрачными байтами; формат задаёт Codec.
type Store interface {
	// Save записывает сохранение, перезаписывая существующее с тем же именем
	Save(ctx context.Context, name string, data []byte) error

	// Load читает сохранение. Если его нет, возвращает ошибку, оборачивающую ErrSceneNotFound
	Load(ctx context.Context, name string) ([]byte, error)

	// List возвращает имена сохранений в алфавитном порядке
	List(ctx context.Context) ([]string, error)

	// Delete удаляет сохранение. Удаление отсутствующего возвращает ErrSceneNotFound
	Delete(ctx context.Context, name string) error

	// Close освобождает соединения и файлы хранилища
	Close() error
}

// ValidateName проверяет имя сохранения
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrSceneNotFound, name)
}

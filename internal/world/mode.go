package world

import (
	"fmt"
	"strings"
)

// Mode — режим работы песочницы
type Mode uint8

const (
	ModePlacement Mode = iota // Касание плоскости создаёт выбранный префаб
	ModeEdit                  // Доступны поворот и высота последнего выбранного объекта
)

// String возвращает строковое представление режима
func (m Mode) String() string {
	switch m {
	case ModePlacement:
		return "placement"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Toggle возвращает противоположный режим
func (m Mode) Toggle() Mode {
	if m == ModePlacement {
		return ModeEdit
	}
	return ModePlacement
}

// ParseMode разбирает имя режима
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "placement", "":
		return ModePlacement, nil
	case "edit":
		return ModeEdit, nil
	}
	return ModePlacement, fmt.Errorf("неизвестный режим %q", s)
}

// MarshalText реализует encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

package object

import (
	"fmt"
	"strings"
)

// Category определяет, в какой реестр попадает объект и какое правило размещения к нему применяется
type Category uint8

const (
	CategoryProp   Category = iota // Прочие объекты (пушки, звёзды и т.п.) — не отслеживаются реестром
	CategoryDomino                 // Домино
	CategoryRamp                   // Горка с точкой стыковки SnapZone
	CategoryMarble                 // Шарик
)

// TrackedCategories — категории, для которых ведётся реестр живых объектов
var TrackedCategories = []Category{CategoryDomino, CategoryRamp, CategoryMarble}

// String возвращает строковое представление категории (совпадает с тегом сцены)
func (c Category) String() string {
	switch c {
	case CategoryDomino:
		return "Domino"
	case CategoryRamp:
		return "Ramp"
	case CategoryMarble:
		return "Marble"
	case CategoryProp:
		return "Prop"
	default:
		return "Unknown"
	}
}

// Tracked сообщает, ведётся ли для категории реестр
func (c Category) Tracked() bool {
	return c == CategoryDomino || c == CategoryRamp || c == CategoryMarble
}

// ParseCategory разбирает имя категории без учёта регистра
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "domino":
		return CategoryDomino, nil
	case "ramp":
		return CategoryRamp, nil
	case "marble":
		return CategoryMarble, nil
	case "prop":
		return CategoryProp, nil
	}
	return CategoryProp, fmt.Errorf("неизвестная категория %q", s)
}

// MarshalText реализует encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

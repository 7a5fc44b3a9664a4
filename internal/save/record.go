package save

import (
	"time"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

// FormatVersion — версия формата сохранения
const FormatVersion = 1

// Record — запись журнала трансформаций одного объекта
type Record struct {
	Position vec.Vec3       `json:"position"`
	Rotation vec.Quaternion `json:"rotation"`
	Scale    vec.Vec3       `json:"scale"`
	Tag      string         `json:"tag"`              // Marble, Domino или Ramp
	Prefab   string         `json:"prefab,omitempty"` // Конкретный префаб; пусто в старых сохранениях
}

// Snapshot — сохранённая сцена
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Records []Record  `json:"records"`
}

// RecordFrom строит запись по снимку объекта
func RecordFrom(snap object.Snapshot) Record {
	return Record{
		Position: snap.Pose.Position,
		Rotation: snap.Pose.Rotation,
		Scale:    snap.Scale,
		Tag:      snap.Category.String(),
		Prefab:   snap.Prefab,
	}
}

// Pose возвращает позу объекта из записи
func (r Record) Pose() object.Pose {
	return object.Pose{Position: r.Position, Rotation: r.Rotation}
}

// CountByTag возвращает число записей по тегам
func (s *Snapshot) CountByTag() map[string]int {
	out := make(map[string]int)
	for _, r := range s.Records {
		out[r.Tag]++
	}
	return out
}

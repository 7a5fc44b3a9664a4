package placement

import (
	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

// DefaultSnapThreshold — горизонтальный радиус стыковки шарика с горкой
const DefaultSnapThreshold = 0.075

// Config задаёт параметры движка размещения
type Config struct {
	SnapThreshold float64
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{SnapThreshold: DefaultSnapThreshold}
}

// Finder отвечает на запросы ближайшего объекта категории
type Finder interface {
	FindNearest(category object.Category, point vec.Vec3) (*object.Object, bool)
}

// Decision — итоговая поза объекта и побочные эффекты для физики
type Decision struct {
	Pose      object.Pose
	Settle    bool           // Обнулить скорости и усыпить тело
	SnappedTo *object.Object // Горка, к которой пристыкован шарик
	Neighbor  *object.Object // Домино, на которое развёрнуто новое домино
}

// Engine вычисляет позу размещаемого или перетаскиваемого объекта
type Engine struct {
	finder  Finder
	cfg     Config
	metrics *Metrics
}

// NewEngine создаёт движок. metrics может быть nil.
func NewEngine(finder Finder, cfg Config, metrics *Metrics) *Engine {
	if cfg.SnapThreshold <= 0 {
		cfg.SnapThreshold = DefaultSnapThreshold
	}
	return &Engine{finder: finder, cfg: cfg, metrics: metrics}
}

// SnapThreshold возвращает действующий радиус стыковки
func (e *Engine) SnapThreshold() float64 {
	return e.cfg.SnapThreshold
}

// ResolvePlacement вычисляет позу нового объекта категории category в точке попадания.
// Новое домино разворачивается к ближайшему существующему домино.
func (e *Engine) ResolvePlacement(category object.Category, hit object.Pose) Decision {
	decision := Decision{Pose: hit}
	if category != object.CategoryDomino {
		return decision
	}

	nearest, ok := e.finder.FindNearest(object.CategoryDomino, hit.Position)
	if !ok {
		return decision
	}

	// Разворот только по рысканию: направление проецируется на пол
	direction := nearest.Position().Sub(hit.Position).Flatten()
	if direction.SqrLength() == 0 {
		return decision
	}

	decision.Pose.Rotation = vec.LookRotation(direction, vec.Up)
	decision.Neighbor = nearest
	e.metrics.facing()
	return decision
}

// ResolveDrag вычисляет позу выбранного объекта obj при перетаскивании в точку drag.
// Шарик стыкуется с ближайшей горкой, если та ближе порога по горизонтали.
func (e *Engine) ResolveDrag(obj *object.Object, drag vec.Vec3) Decision {
	decision := Decision{Pose: object.Pose{Position: drag, Rotation: obj.Pose.Rotation}}
	if obj.Category != object.CategoryMarble {
		return decision
	}

	ramp, ok := e.finder.FindNearest(object.CategoryRamp, drag)
	if !ok {
		return decision
	}

	if ramp.Position().HorizontalDistanceTo(drag) < e.cfg.SnapThreshold {
		decision.Pose = ramp.AttachmentPose()
		decision.Settle = true
		decision.SnappedTo = ramp
		e.metrics.snapped()
		return decision
	}

	e.metrics.missed()
	return decision
}

// Apply переносит решение на объект
func (d Decision) Apply(obj *object.Object) {
	obj.Pose = d.Pose
	if d.Settle {
		obj.Body.Settle()
	}
}

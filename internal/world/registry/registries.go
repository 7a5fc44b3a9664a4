package registry

import (
	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

// Lifecycle — хуки жизненного цикла, которые вызывает владелец объектов
type Lifecycle interface {
	OnActivate(obj *object.Object)
	OnDeactivate(obj *object.Object)
}

// Registries объединяет реестры всех отслеживаемых категорий.
// Принадлежит сцене и передаётся движку размещения по ссылке.
type Registries struct {
	byCategory map[object.Category]*Registry
}

var _ Lifecycle = (*Registries)(nil)

// NewRegistries создаёт реестры для Domino, Ramp и Marble.
// metrics может быть nil.
func NewRegistries(metrics *Metrics) *Registries {
	rs := &Registries{byCategory: make(map[object.Category]*Registry, len(object.TrackedCategories))}
	for _, category := range object.TrackedCategories {
		r := New(category)
		if metrics != nil {
			r.onChange = metrics.observe
			metrics.observe(category, 0)
		}
		rs.byCategory[category] = r
	}
	return rs
}

// For возвращает реестр категории или nil для неотслеживаемых категорий
func (rs *Registries) For(category object.Category) *Registry {
	return rs.byCategory[category]
}

// Register добавляет объект в реестр его категории
func (rs *Registries) Register(obj *object.Object) {
	if obj == nil {
		return
	}
	if r := rs.For(obj.Category); r != nil {
		r.Register(obj)
	}
}

// Unregister удаляет объект из реестра его категории
func (rs *Registries) Unregister(obj *object.Object) {
	if obj == nil {
		return
	}
	if r := rs.For(obj.Category); r != nil {
		r.Unregister(obj)
	}
}

// OnActivate вызывается, когда объект появляется в сцене
func (rs *Registries) OnActivate(obj *object.Object) {
	rs.Register(obj)
}

// OnDeactivate вызывается перед уничтожением объекта
func (rs *Registries) OnDeactivate(obj *object.Object) {
	rs.Unregister(obj)
}

// FindNearest ищет ближайший к point объект категории
func (rs *Registries) FindNearest(category object.Category, point vec.Vec3) (*object.Object, bool) {
	r := rs.For(category)
	if r == nil {
		return nil, false
	}
	return r.FindNearest(point)
}

// Counts возвращает число живых объектов по категориям
func (rs *Registries) Counts() map[object.Category]int {
	out := make(map[object.Category]int, len(rs.byCategory))
	for category, r := range rs.byCategory {
		out[category] = r.Len()
	}
	return out
}

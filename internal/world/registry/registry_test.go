package registry

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

var nextID uint64

func newObject(category object.Category, x, y, z float64) *object.Object {
	nextID++
	return object.New(nextID, object.Prefab{Name: category.String(), Category: category},
		object.NewPose(vec.Vec3{X: x, Y: y, Z: z}))
}

func TestRegistries_EmptyFindNearest(t *testing.T) {
	rs := NewRegistries(nil)

	for _, category := range []object.Category{object.CategoryDomino, object.CategoryRamp, object.CategoryMarble, object.CategoryProp} {
		obj, ok := rs.FindNearest(category, vec.Vec3{X: 1})
		assert.False(t, ok, "пустой реестр %s должен возвращать none", category)
		assert.Nil(t, obj)
	}
}

func TestRegistry_FindNearestMinimizesDistance(t *testing.T) {
	r := New(object.CategoryDomino)
	far := newObject(object.CategoryDomino, 10, 0, 0)
	near := newObject(object.CategoryDomino, 1, 1, 0)
	mid := newObject(object.CategoryDomino, 0, 0, 3)
	r.Register(far)
	r.Register(near)
	r.Register(mid)

	points := []vec.Vec3{
		{X: 0}, {X: 2, Y: 1}, {X: 9, Z: -4}, {Z: 5}, {X: -3, Y: 7, Z: 2},
	}
	for _, p := range points {
		got, ok := r.FindNearest(p)
		require.True(t, ok)

		// Сравниваем с полным перебором
		for _, other := range r.Members() {
			assert.LessOrEqual(t, got.Position().SqrDistanceTo(p), other.Position().SqrDistanceTo(p),
				"для точки %+v найден не ближайший объект", p)
		}
	}
}

func TestRegistry_TiesAreDeterministic(t *testing.T) {
	r := New(object.CategoryRamp)
	first := newObject(object.CategoryRamp, 1, 0, 0)
	second := newObject(object.CategoryRamp, -1, 0, 0)
	r.Register(first)
	r.Register(second)

	for i := 0; i < 10; i++ {
		got, ok := r.FindNearest(vec.Zero)
		require.True(t, ok)
		assert.Same(t, first, got, "при равенстве побеждает зарегистрированный раньше")
	}

	// После удаления и повторной регистрации первый становится последним
	r.Unregister(first)
	r.Register(first)
	got, _ := r.FindNearest(vec.Zero)
	assert.Same(t, second, got)
}

func TestRegistry_FindNearestSkipsNaNPosition(t *testing.T) {
	r := New(object.CategoryDomino)
	broken := newObject(object.CategoryDomino, math.NaN(), 0, 0)
	valid := newObject(object.CategoryDomino, 5, 0, 0)
	r.Register(broken)

	got, ok := r.FindNearest(vec.Zero)
	assert.False(t, ok, "объект с NaN координатой не может быть ближайшим")
	assert.Nil(t, got)

	r.Register(valid)
	got, ok = r.FindNearest(vec.Zero)
	require.True(t, ok)
	assert.Same(t, valid, got)
}

func TestRegistry_RegisterUnregisterRoundTrip(t *testing.T) {
	r := New(object.CategoryMarble)
	a := newObject(object.CategoryMarble, 0, 0, 0)
	b := newObject(object.CategoryMarble, 1, 0, 0)
	r.Register(a)

	before := r.Members()
	r.Register(b)
	r.Unregister(b)

	assert.Equal(t, before, r.Members())
	assert.False(t, r.Contains(b))

	// Удаление отсутствующего объекта не является ошибкой
	r.Unregister(b)
	r.Unregister(nil)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := New(object.CategoryDomino)
	a := newObject(object.CategoryDomino, 0, 0, 0)

	r.Register(a)
	r.Register(a)
	r.Register(nil)

	assert.Equal(t, 1, r.Len())
	r.Unregister(a)
	assert.Equal(t, 0, r.Len(), "после одного Unregister объекта быть не должно")
}

func TestRegistry_UnregisterKeepsOrder(t *testing.T) {
	r := New(object.CategoryDomino)
	objs := make([]*object.Object, 5)
	for i := range objs {
		objs[i] = newObject(object.CategoryDomino, float64(i), 0, 0)
		r.Register(objs[i])
	}

	r.Unregister(objs[1])
	r.Unregister(objs[3])

	assert.Equal(t, []*object.Object{objs[0], objs[2], objs[4]}, r.Members())
	for _, obj := range []*object.Object{objs[0], objs[2], objs[4]} {
		assert.True(t, r.Contains(obj))
	}
}

func TestRegistries_LifecycleRoutesByCategory(t *testing.T) {
	rs := NewRegistries(nil)
	domino := newObject(object.CategoryDomino, 0, 0, 0)
	ramp := newObject(object.CategoryRamp, 0, 0, 0)
	prop := newObject(object.CategoryProp, 0, 0, 0)

	var hooks Lifecycle = rs
	hooks.OnActivate(domino)
	hooks.OnActivate(ramp)
	hooks.OnActivate(prop)

	assert.True(t, rs.For(object.CategoryDomino).Contains(domino))
	assert.False(t, rs.For(object.CategoryRamp).Contains(domino), "объект состоит только в реестре своей категории")
	assert.True(t, rs.For(object.CategoryRamp).Contains(ramp))
	assert.Nil(t, rs.For(object.CategoryProp), "для прочих объектов реестра нет")

	hooks.OnDeactivate(domino)
	assert.False(t, rs.For(object.CategoryDomino).Contains(domino))
	assert.Equal(t, map[object.Category]int{
		object.CategoryDomino: 0,
		object.CategoryRamp:   1,
		object.CategoryMarble: 0,
	}, rs.Counts())
}

func TestRegistries_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rs := NewRegistries(NewMetrics(reg))
	m := newObject(object.CategoryMarble, 0, 0, 0)

	rs.OnActivate(m)
	rs.OnActivate(newObject(object.CategoryMarble, 1, 0, 0))
	rs.OnDeactivate(m)

	// В реестре остался один шарик
	gauge, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, gauge, 1)
	count, err := testutil.GatherAndCount(reg, "marble_registry_objects")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "по серии на категорию")

	var marbles float64
	for _, metric := range gauge[0].GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetValue() == "Marble" {
				marbles = metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, marbles)
}

package placement

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
	"github.com/annel0/marble/internal/world/registry"
)

type fixture struct {
	regs    *registry.Registries
	engine  *Engine
	catalog *object.Catalog
	nextID  uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	regs := registry.NewRegistries(nil)
	return &fixture{
		regs:    regs,
		engine:  NewEngine(regs, DefaultConfig(), nil),
		catalog: object.DefaultCatalog(),
	}
}

func (f *fixture) spawn(t *testing.T, prefab string, pose object.Pose) *object.Object {
	t.Helper()
	p, err := f.catalog.Lookup(prefab)
	require.NoError(t, err)
	f.nextID++
	obj := object.New(f.nextID, p, pose)
	f.regs.OnActivate(obj)
	return obj
}

func TestResolvePlacement_DominoWithoutNeighbors(t *testing.T) {
	f := newFixture(t)
	hit := object.Pose{Position: vec.Vec3{X: 1, Z: 2}, Rotation: vec.FromYaw(37)}

	d := f.engine.ResolvePlacement(object.CategoryDomino, hit)

	assert.Equal(t, hit, d.Pose, "без соседей используется исходная поза попадания")
	assert.Nil(t, d.Neighbor)
	assert.False(t, d.Settle)
}

func TestResolvePlacement_DominoFacesNearest(t *testing.T) {
	cases := []struct {
		name     string
		neighbor vec.Vec3
		hit      vec.Vec3
		yaw      float64
	}{
		{"вдоль +X", vec.Vec3{X: 1}, vec.Zero, 90},
		{"вдоль -Z", vec.Vec3{Z: -2}, vec.Zero, 180},
		{"по диагонали", vec.Vec3{X: 1, Z: 1}, vec.Zero, 45},
		{"сосед выше точки", vec.Vec3{X: -1, Y: 0.3, Z: 1}, vec.Vec3{Y: 0.1}, 315},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			neighbor := f.spawn(t, "Domino", object.NewPose(tc.neighbor))

			hit := object.Pose{Position: tc.hit, Rotation: vec.FromYaw(10)}
			d := f.engine.ResolvePlacement(object.CategoryDomino, hit)

			assert.Same(t, neighbor, d.Neighbor)
			assert.Equal(t, tc.hit, d.Pose.Position, "позиция совпадает с точкой попадания")
			assert.InDelta(t, tc.yaw, d.Pose.Rotation.Yaw(), 1e-6)

			// Домино стоит вертикально
			up := d.Pose.Rotation.Rotate(vec.Up)
			assert.True(t, up.ApproxEquals(vec.Up, 1e-9), "ось вверх отклонилась: %+v", up)

			forward := d.Pose.Rotation.Rotate(vec.Forward)
			want := tc.neighbor.Sub(tc.hit).Flatten().Normalized()
			assert.True(t, forward.ApproxEquals(want, 1e-9), "домино смотрит в %+v, ожидалось %+v", forward, want)
		})
	}
}

func TestResolvePlacement_DominoPicksNearestOfMany(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, "Domino", object.NewPose(vec.Vec3{X: 5}))
	near := f.spawn(t, "Domino", object.NewPose(vec.Vec3{Z: -1}))
	f.spawn(t, "Domino", object.NewPose(vec.Vec3{X: -3, Z: 3}))

	d := f.engine.ResolvePlacement(object.CategoryDomino, object.NewPose(vec.Zero))
	assert.Same(t, near, d.Neighbor)
	assert.InDelta(t, 180.0, d.Pose.Rotation.Yaw(), 1e-6)
}

func TestResolvePlacement_DominoDegenerateDirection(t *testing.T) {
	f := newFixture(t)
	// Сосед прямо над точкой попадания: горизонтального направления нет
	f.spawn(t, "Domino", object.NewPose(vec.Vec3{X: 1, Y: 0.5, Z: 1}))

	hit := object.Pose{Position: vec.Vec3{X: 1, Z: 1}, Rotation: vec.FromYaw(20)}
	d := f.engine.ResolvePlacement(object.CategoryDomino, hit)

	assert.Equal(t, hit, d.Pose)
	assert.Nil(t, d.Neighbor)
}

func TestResolvePlacement_OtherCategoriesUseRawHit(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, "Domino", object.NewPose(vec.Vec3{X: 1}))
	f.spawn(t, "SimpleRamp", object.NewPose(vec.Vec3{X: 0.01}))

	hit := object.Pose{Position: vec.Zero, Rotation: vec.FromYaw(33)}
	for _, category := range []object.Category{object.CategoryRamp, object.CategoryMarble, object.CategoryProp} {
		d := f.engine.ResolvePlacement(category, hit)
		assert.Equal(t, hit, d.Pose, "категория %s", category)
		assert.False(t, d.Settle)
	}
}

func TestResolveDrag_MarbleSnapsToRamp(t *testing.T) {
	f := newFixture(t)
	ramp := f.spawn(t, "SimpleRamp", object.Pose{Position: vec.Vec3{X: 1, Z: 1}, Rotation: vec.FromYaw(90)})
	marble := f.spawn(t, "Marble", object.NewPose(vec.Vec3{X: 3}))
	marble.Body.LinearVelocity = vec.Vec3{X: 0.4, Y: -1}
	marble.Body.AngularVelocity = vec.Vec3{Y: 2}

	// Высота точки не влияет на стыковку
	drag := vec.Vec3{X: 1.05, Y: 2, Z: 1.02}
	d := f.engine.ResolveDrag(marble, drag)

	require.True(t, d.Settle)
	assert.Same(t, ramp, d.SnappedTo)
	assert.Equal(t, ramp.AttachmentPose(), d.Pose, "шарик встаёт ровно в SnapZone")

	d.Apply(marble)
	assert.Equal(t, ramp.AttachmentPose(), marble.Pose)
	assert.Equal(t, vec.Zero, marble.Body.LinearVelocity)
	assert.Equal(t, vec.Zero, marble.Body.AngularVelocity)
	assert.True(t, marble.Body.Asleep)
}

func TestResolveDrag_MarbleOutsideThreshold(t *testing.T) {
	cases := []struct {
		name string
		drag vec.Vec3
	}{
		{"далеко", vec.Vec3{X: 0.5}},
		{"ровно на пороге", vec.Vec3{X: DefaultSnapThreshold}},
		{"по оси Z", vec.Vec3{Y: -0.2, Z: 0.1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.spawn(t, "SimpleRamp", object.NewPose(vec.Zero))
			rotation := vec.FromYaw(15)
			marble := f.spawn(t, "Marble", object.Pose{Position: vec.Vec3{X: 3}, Rotation: rotation})
			velocity := vec.Vec3{X: 0.4, Y: -1}
			marble.Body.LinearVelocity = velocity

			d := f.engine.ResolveDrag(marble, tc.drag)
			d.Apply(marble)

			assert.False(t, d.Settle)
			assert.Nil(t, d.SnappedTo)
			assert.Equal(t, tc.drag, marble.Pose.Position, "шарик следует за пальцем")
			assert.Equal(t, rotation, marble.Pose.Rotation, "ориентация не меняется")
			assert.Equal(t, velocity, marble.Body.LinearVelocity, "скорость не меняется")
		})
	}
}

func TestResolveDrag_MarbleWithoutRamps(t *testing.T) {
	f := newFixture(t)
	marble := f.spawn(t, "Marble", object.NewPose(vec.Zero))

	d := f.engine.ResolveDrag(marble, vec.Vec3{X: 0.01})
	assert.Equal(t, vec.Vec3{X: 0.01}, d.Pose.Position)
	assert.False(t, d.Settle)
}

func TestResolveDrag_OtherCategoriesNeverSnap(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, "SimpleRamp", object.NewPose(vec.Zero))
	domino := f.spawn(t, "Domino", object.NewPose(vec.Vec3{X: 1}))

	d := f.engine.ResolveDrag(domino, vec.Vec3{X: 0.01})
	assert.Equal(t, vec.Vec3{X: 0.01}, d.Pose.Position)
	assert.Nil(t, d.SnappedTo)
	assert.False(t, d.Settle)
}

func TestEngine_ConfigurableThreshold(t *testing.T) {
	regs := registry.NewRegistries(nil)
	catalog := object.DefaultCatalog()
	rampPrefab, _ := catalog.Lookup("SimpleRamp")
	marblePrefab, _ := catalog.Lookup("Marble")
	regs.OnActivate(object.New(1, rampPrefab, object.NewPose(vec.Zero)))
	marble := object.New(2, marblePrefab, object.NewPose(vec.Vec3{X: 1}))

	wide := NewEngine(regs, Config{SnapThreshold: 0.2}, nil)
	assert.True(t, wide.ResolveDrag(marble, vec.Vec3{X: 0.15}).Settle)

	narrow := NewEngine(regs, Config{SnapThreshold: 0.03}, nil)
	assert.False(t, narrow.ResolveDrag(marble, vec.Vec3{X: 0.05}).Settle)

	assert.Equal(t, DefaultSnapThreshold, NewEngine(regs, Config{}, nil).SnapThreshold(), "нулевой порог заменяется значением по умолчанию")
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	regs := registry.NewRegistries(nil)
	engine := NewEngine(regs, DefaultConfig(), metrics)
	catalog := object.DefaultCatalog()
	rampPrefab, _ := catalog.Lookup("SimpleRamp")
	marblePrefab, _ := catalog.Lookup("Marble")
	regs.OnActivate(object.New(1, rampPrefab, object.NewPose(vec.Zero)))
	marble := object.New(2, marblePrefab, object.NewPose(vec.Vec3{X: 1}))

	engine.ResolveDrag(marble, vec.Vec3{X: 0.01})
	engine.ResolveDrag(marble, vec.Vec3{X: 1})
	engine.ResolveDrag(marble, vec.Vec3{X: 2})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.snaps.WithLabelValues("snapped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.snaps.WithLabelValues("missed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.facers))
}

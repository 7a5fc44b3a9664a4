package save

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world"
	"github.com/annel0/marble/internal/world/object"
)

func newTestManager(t *testing.T, store Store) (*Manager, *world.Scene) {
	t.Helper()
	scene, err := world.NewScene(world.Options{})
	require.NoError(t, err)
	m, err := NewManager(store, scene, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, scene
}

func spawn(t *testing.T, s *world.Scene, prefab string, pos vec.Vec3, yaw float64) object.Snapshot {
	t.Helper()
	snap, err := s.Spawn(context.Background(), prefab, object.Pose{Position: pos, Rotation: vec.FromYaw(yaw)})
	require.NoError(t, err)
	return snap
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	defer codec.Close()

	in := &Snapshot{
		Version: FormatVersion,
		SavedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Records: []Record{{
			Position: vec.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
			Rotation: vec.FromYaw(30),
			Scale:    vec.One,
			Tag:      "Domino",
			Prefab:   "Domino",
		}},
	}
	data, err := codec.Encode(in)
	require.NoError(t, err)

	out, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = codec.Decode([]byte("не zstd"))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, scene := newTestManager(t, NewMemoryStore())

	domino := spawn(t, scene, "Domino", vec.Vec3{X: 1}, 30)
	spawn(t, scene, "SpiralRamp", vec.Vec3{Z: 1}, 90)
	marble := spawn(t, scene, "Marble", vec.Vec3{Y: 0.3}, 0)
	spawn(t, scene, "Star", vec.Vec3{X: 2}, 0)

	_, err := scene.SetVelocity(ctx, marble.ID, vec.Vec3{X: 3}, vec.Vec3{Y: 1})
	require.NoError(t, err)

	res, err := m.Save(ctx, "objects")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Objects, "сохраняются только шарики, домино и горки")

	got, err := scene.Object(marble.ID)
	require.NoError(t, err)
	assert.Equal(t, vec.Zero, got.Body.LinearVelocity, "перед сохранением скорости обнуляются")

	// Сцена меняется после сохранения
	spawn(t, scene, "Domino", vec.Vec3{X: 5}, 0)

	res, err = m.Load(ctx, "objects")
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "objects", Objects: 3}, res)

	objects := scene.Objects()
	require.Len(t, objects, 3)

	assert.Equal(t, "Domino", objects[0].Prefab)
	assert.Equal(t, domino.Pose.Position, objects[0].Pose.Position)
	assert.InDelta(t, 30.0, objects[0].Pose.Rotation.Yaw(), 1e-9)
	assert.Equal(t, domino.Scale, objects[0].Scale)

	assert.Equal(t, "SpiralRamp", objects[1].Prefab, "вид горки сохраняется")
	assert.Equal(t, "Marble", objects[2].Prefab)
	for _, obj := range objects {
		assert.Equal(t, vec.Zero, obj.Body.LinearVelocity)
		assert.Equal(t, vec.Zero, obj.Body.AngularVelocity)
	}

	assert.Equal(t, objects[2].ID, scene.Stats().LastSelected, "последний восстановленный объект становится выбранным")
	assert.Equal(t, 1, scene.Registries().For(object.CategoryRamp).Len())
}

func TestManager_LoadSkipsUnknownTags(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, scene := newTestManager(t, store)

	snap := &Snapshot{Version: FormatVersion, Records: []Record{
		{Tag: "Cannon", Position: vec.Vec3{X: 1}, Rotation: vec.Identity, Scale: vec.One},
		{Tag: "Ramp", Position: vec.Vec3{X: 2}, Rotation: vec.Identity, Scale: vec.Vec3{X: 2, Y: 2, Z: 2}},
		{Tag: "Domino", Prefab: "SimpleRamp", Rotation: vec.Identity},
	}}
	data, err := m.codec.Encode(snap)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "legacy", data))

	res, err := m.Load(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Objects)
	assert.Equal(t, 1, res.Skipped)

	objects := scene.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, "SimpleRamp", objects[0].Prefab, "без имени префаба берётся первый префаб категории")
	assert.Equal(t, vec.Vec3{X: 2, Y: 2, Z: 2}, objects[0].Scale)
	assert.Equal(t, "Domino", objects[1].Prefab, "префаб другой категории не подменяет тег")
	assert.Equal(t, vec.Vec3{X: 0.02, Y: 0.1, Z: 0.05}, objects[1].Scale, "нулевой масштаб заменяется масштабом префаба")
}

func TestManager_LoadFailureKeepsScene(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, scene := newTestManager(t, store)
	spawn(t, scene, "Domino", vec.Zero, 0)

	_, err := m.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSceneNotFound)

	require.NoError(t, store.Save(ctx, "broken", []byte("garbage")))
	_, err = m.Load(ctx, "broken")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	assert.Len(t, scene.Objects(), 1, "неудачная загрузка не очищает сцену")

	_, err = m.Save(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestManager_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	scene, err := world.NewScene(world.Options{})
	require.NoError(t, err)
	m, err := NewManager(NewMemoryStore(), scene, nil, metrics)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Save(ctx, "objects")
	require.NoError(t, err)
	_, err = m.Load(ctx, "objects")
	require.NoError(t, err)
	_, err = m.Load(ctx, "missing")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ops.WithLabelValues("save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ops.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ops.WithLabelValues("load", "error")))
}

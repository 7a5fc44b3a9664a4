package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/vec"
)

func TestCategory_ParseAndString(t *testing.T) {
	for _, c := range []Category{CategoryProp, CategoryDomino, CategoryRamp, CategoryMarble} {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	parsed, err := ParseCategory("  MARBLE ")
	require.NoError(t, err)
	assert.Equal(t, CategoryMarble, parsed)

	_, err = ParseCategory("cube")
	assert.Error(t, err)

	assert.False(t, CategoryProp.Tracked(), "прочие объекты не отслеживаются")
	for _, c := range TrackedCategories {
		assert.True(t, c.Tracked())
	}
}

func TestBody_Settle(t *testing.T) {
	b := Body{
		LinearVelocity:  vec.Vec3{X: 1, Y: -2},
		AngularVelocity: vec.Vec3{Z: 3},
	}

	b.Freeze()
	assert.Equal(t, vec.Zero, b.LinearVelocity)
	assert.Equal(t, vec.Zero, b.AngularVelocity)
	assert.False(t, b.Asleep, "Freeze не усыпляет тело")

	b.LinearVelocity = vec.Vec3{X: 5}
	b.Settle()
	assert.Equal(t, vec.Zero, b.LinearVelocity)
	assert.True(t, b.Asleep)
}

func TestObject_AttachmentPose(t *testing.T) {
	ramp := New(1, Prefab{
		Name:     "Ramp",
		Category: CategoryRamp,
		Scale:    vec.Vec3{X: 2, Y: 2, Z: 2},
		SnapZone: rampZone(0, 0.1, 0.2),
	}, Pose{Position: vec.Vec3{X: 1, Z: 1}, Rotation: vec.FromYaw(90)})

	zone := ramp.AttachmentPose()
	// Смещение (0, 0.2, 0.4) после поворота на 90° вокруг Y становится (0.4, 0.2, 0)
	assert.True(t, zone.Position.ApproxEquals(vec.Vec3{X: 1.4, Y: 0.2, Z: 1}, 1e-9), "получено %+v", zone.Position)
	assert.True(t, zone.Rotation.ApproxEquals(vec.FromYaw(90), 1e-9))

	// Без точки стыковки возвращается поза самого объекта
	marble := New(2, Prefab{Name: "Marble", Category: CategoryMarble}, NewPose(vec.Vec3{Y: 1}))
	assert.Equal(t, marble.Pose, marble.AttachmentPose())
	assert.Equal(t, vec.One, marble.Scale, "нулевой масштаб заменяется единичным")
}

func TestObject_NewCopiesSnapZone(t *testing.T) {
	prefab := Prefab{Name: "Ramp", Category: CategoryRamp, SnapZone: rampZone(0, 1, 0)}
	a := New(1, prefab, NewPose(vec.Zero))
	a.SnapZone.Local.Position.Y = 5

	b := New(2, prefab, NewPose(vec.Zero))
	assert.Equal(t, 1.0, b.SnapZone.Local.Position.Y, "объекты не должны делить точку стыковки")
}

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()

	p, err := c.Lookup("simpleramp")
	require.NoError(t, err)
	assert.Equal(t, CategoryRamp, p.Category)
	require.NotNil(t, p.SnapZone)
	assert.Equal(t, SnapZoneName, p.SnapZone.Name)

	p, err = c.Lookup("Cola Can")
	require.NoError(t, err)
	assert.Equal(t, CategoryProp, p.Category)

	_, err = c.Lookup("Dragon")
	assert.True(t, errors.Is(err, ErrUnknownPrefab))
}

func TestCatalog_ForCategory(t *testing.T) {
	c := DefaultCatalog()

	for _, category := range TrackedCategories {
		p, ok := c.ForCategory(category)
		require.True(t, ok, "нет префаба для %s", category)
		assert.Equal(t, category, p.Category)
	}

	// Для горок выбирается первый по имени
	ramp, _ := c.ForCategory(CategoryRamp)
	assert.Equal(t, "SimpleRamp", ramp.Name)

	_, ok := NewCatalog().ForCategory(CategoryDomino)
	assert.False(t, ok)
}

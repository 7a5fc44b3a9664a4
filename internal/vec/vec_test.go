package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestVec3_Distances(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	assert.Equal(t, 25.0, a.SqrDistanceTo(b), "квадрат расстояния 3-4-5")
	assert.InDelta(t, 5.0, a.DistanceTo(b), eps)

	// Высота не влияет на горизонтальное расстояние
	c := Vec3{X: 4, Y: 100, Z: 7}
	assert.InDelta(t, 5.0, a.HorizontalDistanceTo(c), eps)
}

func TestVec3_Normalized(t *testing.T) {
	assert.Equal(t, Zero, Zero.Normalized(), "нулевой вектор остаётся нулевым")
	n := Vec3{X: 3, Z: 4}.Normalized()
	assert.InDelta(t, 1.0, n.Length(), eps)
	assert.InDelta(t, 0.6, n.X, eps)
	assert.InDelta(t, 0.8, n.Z, eps)
}

func TestVec3_Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	assert.Equal(t, Vec3{Z: 1}, x.Cross(y))
	assert.Equal(t, Vec3{Z: -1}, y.Cross(x))
}

func TestQuaternion_FromYawRotatesForward(t *testing.T) {
	q := FromYaw(90)
	f := q.Rotate(Forward)
	assert.True(t, f.ApproxEquals(Vec3{X: 1}, 1e-9), "поворот на 90° должен направить Forward вдоль +X, получено %+v", f)
	assert.InDelta(t, 90.0, q.Yaw(), 1e-6)
}

func TestQuaternion_LookRotation(t *testing.T) {
	cases := []struct {
		name    string
		forward Vec3
	}{
		{"вдоль +X", Vec3{X: 1}},
		{"вдоль -Z", Vec3{Z: -1}},
		{"диагональ", Vec3{X: 1, Z: 1}},
		{"с наклоном", Vec3{X: 2, Y: 1, Z: -3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := LookRotation(tc.forward, Up)
			assert.InDelta(t, 1.0, q.Length(), 1e-9, "кватернион должен быть единичным")

			got := q.Rotate(Forward)
			want := tc.forward.Normalized()
			assert.True(t, got.ApproxEquals(want, 1e-9), "Forward → %+v, ожидалось %+v", got, want)

			// Локальная ось вверх не должна уходить под горизонт
			assert.GreaterOrEqual(t, q.Rotate(Up).Y, 0.0)
		})
	}
}

func TestQuaternion_LookRotationDegenerate(t *testing.T) {
	assert.Equal(t, Identity, LookRotation(Zero, Up))

	q := LookRotation(Up, Up)
	assert.True(t, q.Rotate(Forward).ApproxEquals(Up, 1e-9))
}

func TestQuaternion_MulComposes(t *testing.T) {
	a := FromYaw(30)
	b := FromYaw(60)
	c := a.Mul(b)

	assert.True(t, c.ApproxEquals(FromYaw(90), 1e-9))

	v := Vec3{X: 1, Y: 2, Z: 3}
	assert.True(t, c.Rotate(v).ApproxEquals(a.Rotate(b.Rotate(v)), 1e-9))
}

func TestQuaternion_ConjugateInverts(t *testing.T) {
	q := FromAxisAngle(Vec3{X: 1, Y: 1}, math.Pi/3)
	v := Vec3{X: -2, Y: 0.5, Z: 4}
	back := q.Conjugate().Rotate(q.Rotate(v))
	assert.True(t, back.ApproxEquals(v, 1e-9))
}

func TestQuaternion_ApproxEqualsSignInvariant(t *testing.T) {
	q := FromYaw(45)
	neg := Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	assert.True(t, q.ApproxEquals(neg, 1e-12))
	assert.False(t, q.ApproxEquals(FromYaw(50), 1e-6))
}

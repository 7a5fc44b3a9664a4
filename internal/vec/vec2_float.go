package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой.
// Используется как проекция на плоскость пола: X → X, Y → мировая Z.
type Vec2Float struct {
	X, Y float64
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// ToVec3 поднимает точку плоскости пола на высоту y
func (v Vec2Float) ToVec3(y float64) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}

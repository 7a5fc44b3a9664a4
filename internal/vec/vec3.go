package vec

import "math"

// Vec3 представляет точку или направление в мировом пространстве.
// Ось Y направлена вверх, плоскость XZ — горизонтальная плоскость пола.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	// Zero — нулевой вектор
	Zero = Vec3{}
	// One — единичный масштаб
	One = Vec3{X: 1, Y: 1, Z: 1}
	// Up — мировая ось "вверх"
	Up = Vec3{Y: 1}
	// Forward — локальная ось "вперёд" объекта
	Forward = Vec3{Z: 1}
)

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Scale покомпонентно умножает векторы
func (v Vec3) Scale(other Vec3) Vec3 {
	return Vec3{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}
}

// Dot возвращает скалярное произведение
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross возвращает векторное произведение
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// SqrLength возвращает квадрат длины вектора
func (v Vec3) SqrLength() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length возвращает длину вектора
func (v Vec3) Length() float64 {
	return math.Sqrt(v.SqrLength())
}

// Normalized возвращает нормализованный вектор.
// Для нулевого вектора возвращается нулевой вектор.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length == 0 {
		return Zero
	}
	return v.Mul(1 / length)
}

// SqrDistanceTo возвращает квадрат евклидова расстояния до другой точки
func (v Vec3) SqrDistanceTo(other Vec3) float64 {
	return v.Sub(other).SqrLength()
}

// DistanceTo возвращает расстояние до другой точки
func (v Vec3) DistanceTo(other Vec3) float64 {
	return math.Sqrt(v.SqrDistanceTo(other))
}

// Horizontal проецирует вектор на плоскость пола (XZ), отбрасывая высоту
func (v Vec3) Horizontal() Vec2Float {
	return Vec2Float{X: v.X, Y: v.Z}
}

// Flatten обнуляет вертикальную составляющую
func (v Vec3) Flatten() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// HorizontalDistanceTo возвращает расстояние до точки без учёта высоты
func (v Vec3) HorizontalDistanceTo(other Vec3) float64 {
	return v.Horizontal().DistanceTo(other.Horizontal())
}

// WithY возвращает копию вектора с заменённой высотой
func (v Vec3) WithY(y float64) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Z}
}

// Equals проверяет точное равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// ApproxEquals проверяет равенство с допуском eps
func (v Vec3) ApproxEquals(other Vec3, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}

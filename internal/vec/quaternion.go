package vec

import "math"

// Quaternion представляет ориентацию объекта в пространстве.
// Хранится в порядке (X, Y, Z, W), W — скалярная часть.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity — отсутствие поворота
var Identity = Quaternion{W: 1}

// FromAxisAngle создаёт поворот вокруг оси axis на угол angle (радианы)
func FromAxisAngle(axis Vec3, angle float64) Quaternion {
	axis = axis.Normalized()
	if axis.SqrLength() == 0 {
		return Identity
	}
	s := math.Sin(angle / 2)
	return Quaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(angle / 2)}
}

// FromYaw создаёт поворот вокруг вертикальной оси на угол в градусах
func FromYaw(degrees float64) Quaternion {
	return FromAxisAngle(Up, degrees*math.Pi/180)
}

// LookRotation строит ориентацию, при которой локальная ось Forward смотрит вдоль forward,
// а локальная ось Up максимально близка к up.
// Для нулевого forward возвращается Identity.
func LookRotation(forward, up Vec3) Quaternion {
	z := forward.Normalized()
	if z.SqrLength() == 0 {
		return Identity
	}

	x := up.Cross(z).Normalized()
	if x.SqrLength() == 0 {
		// forward параллелен up — выбираем произвольную горизонтальную ось
		x = Vec3{X: 1}
	}
	y := z.Cross(x)

	return fromBasis(x, y, z)
}

// fromBasis переводит ортонормированный базис (столбцы матрицы поворота) в кватернион
func fromBasis(x, y, z Vec3) Quaternion {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quaternion

	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quaternion{
			W: 0.25 / s,
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quaternion{
			W: (m21 - m12) / s,
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
		}
	}

	return q.Normalized()
}

// Mul возвращает композицию поворотов: сначала other, затем q
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Rotate поворачивает вектор v
func (q Quaternion) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// Conjugate возвращает обратный поворот (для единичного кватерниона)
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Length возвращает норму кватерниона
func (q Quaternion) Length() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized возвращает единичный кватернион.
// Нулевой кватернион считается отсутствием поворота.
func (q Quaternion) Normalized() Quaternion {
	n := q.Length()
	if n == 0 {
		return Identity
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Yaw возвращает угол поворота направления Forward вокруг вертикали в градусах [0, 360)
func (q Quaternion) Yaw() float64 {
	f := q.Rotate(Forward)
	deg := math.Atan2(f.X, f.Z) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ApproxEquals сравнивает ориентации с допуском eps.
// q и -q описывают один и тот же поворот.
func (q Quaternion) ApproxEquals(other Quaternion, eps float64) bool {
	dot := q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
	return math.Abs(math.Abs(dot)-1) <= eps
}

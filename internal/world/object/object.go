package object

import (
	"github.com/annel0/marble/internal/vec"
)

// SnapZoneName — имя точки стыковки шарика на горке
const SnapZoneName = "SnapZone"

// Pose — положение и ориентация в мировом пространстве
type Pose struct {
	Position vec.Vec3       `json:"position"`
	Rotation vec.Quaternion `json:"rotation"`
}

// NewPose создаёт позу с отсутствующим поворотом
func NewPose(position vec.Vec3) Pose {
	return Pose{Position: position, Rotation: vec.Identity}
}

// Body хранит кинематическое состояние, которое сообщает внешняя физика
type Body struct {
	LinearVelocity  vec.Vec3 `json:"linear_velocity"`
	AngularVelocity vec.Vec3 `json:"angular_velocity"`
	Asleep          bool     `json:"asleep"`
}

// Freeze обнуляет линейную и угловую скорость
func (b *Body) Freeze() {
	b.LinearVelocity = vec.Zero
	b.AngularVelocity = vec.Zero
}

// Settle останавливает тело и усыпляет его, чтобы оно не скатилось сразу после установки
func (b *Body) Settle() {
	b.Freeze()
	b.Asleep = true
}

// AttachmentPoint — именованная точка на объекте, заданная относительно его собственной позы
type AttachmentPoint struct {
	Name  string `json:"name"`
	Local Pose   `json:"local"`
}

// Object представляет размещённый в сцене объект.
// Идентичность объекта — указатель; ID нужен только для адресации извне.
type Object struct {
	ID       uint64           // Уникальный в рамках процесса идентификатор
	Prefab   string           // Имя префаба, из которого создан объект
	Category Category         // Категория объекта
	Pose     Pose             // Текущая поза
	Scale    vec.Vec3         // Локальный масштаб
	Selected bool             // Выбран ли объект пользователем
	Body     Body             // Скорости и состояние сна
	SnapZone *AttachmentPoint // Точка стыковки (только у горок)
}

// New создаёт объект по префабу в заданной позе
func New(id uint64, prefab Prefab, pose Pose) *Object {
	obj := &Object{
		ID:       id,
		Prefab:   prefab.Name,
		Category: prefab.Category,
		Pose:     pose,
		Scale:    prefab.Scale,
	}
	if obj.Scale == vec.Zero {
		obj.Scale = vec.One
	}
	if prefab.SnapZone != nil {
		zone := *prefab.SnapZone
		obj.SnapZone = &zone
	}
	return obj
}

// Position возвращает текущую позицию объекта
func (o *Object) Position() vec.Vec3 {
	return o.Pose.Position
}

// AttachmentPose возвращает мировую позу точки стыковки.
// Если точки нет, возвращается поза самого объекта.
func (o *Object) AttachmentPose() Pose {
	if o.SnapZone == nil {
		return o.Pose
	}
	local := o.SnapZone.Local
	offset := o.Pose.Rotation.Rotate(local.Position.Scale(o.Scale))
	return Pose{
		Position: o.Pose.Position.Add(offset),
		Rotation: o.Pose.Rotation.Mul(local.Rotation).Normalized(),
	}
}

// Snapshot — копия состояния объекта для чтения вне владельца сцены
type Snapshot struct {
	ID       uint64   `json:"id"`
	Prefab   string   `json:"prefab"`
	Category Category `json:"category"`
	Pose     Pose     `json:"pose"`
	Scale    vec.Vec3 `json:"scale"`
	Selected bool     `json:"selected"`
	Body     Body     `json:"body"`
}

// Snapshot возвращает копию состояния объекта
func (o *Object) Snapshot() Snapshot {
	return Snapshot{
		ID:       o.ID,
		Prefab:   o.Prefab,
		Category: o.Category,
		Pose:     o.Pose,
		Scale:    o.Scale,
		Selected: o.Selected,
		Body:     o.Body,
	}
}

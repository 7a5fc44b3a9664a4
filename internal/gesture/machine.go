package gesture

import (
	"github.com/annel0/marble/internal/logging"
	"github.com/annel0/marble/internal/world/object"
)

// Machine — конечный автомат жеста касания.
// Idle → Selecting → Dragging|Placing → Released → Idle.
// Машина не потокобезопасна: её владелец (сцена) сериализует вызовы.
type Machine struct {
	current      State
	lastSelected *object.Object
	objects      func() []*object.Object // Все размещённые объекты для сброса выделения
}

// NewMachine создаёт автомат в состоянии Idle.
// objects возвращает все размещённые объекты сцены.
func NewMachine(objects func() []*object.Object) *Machine {
	m := &Machine{current: Idle, objects: objects}
	m.current.Enter(m)
	return m
}

// State возвращает текущее состояние
func (m *Machine) State() State {
	return m.current
}

// LastSelected возвращает последний выбранный объект (может быть nil)
func (m *Machine) LastSelected() *object.Object {
	return m.lastSelected
}

// Dispatch обрабатывает событие и возвращает действие для сцены
func (m *Machine) Dispatch(ev Event) Action {
	next, action := m.current.Handle(m, ev)
	m.transition(next)
	// Released — промежуточное состояние, после отпускания автомат возвращается в Idle
	if m.current == Released {
		m.transition(Idle)
	}
	return action
}

// PointerDown обрабатывает касание; hit == nil означает промах
func (m *Machine) PointerDown(hit *object.Object) {
	m.Dispatch(Event{Kind: EventPointerDown, Target: hit})
}

// Hit обрабатывает попадание в плоскость
func (m *Machine) Hit(canPlace bool) Action {
	return m.Dispatch(Event{Kind: EventHit, CanPlace: canPlace})
}

// PointerUp обрабатывает отпускание
func (m *Machine) PointerUp() {
	m.Dispatch(Event{Kind: EventPointerUp})
}

// Adopt делает только что созданный объект последним выбранным без выделения
func (m *Machine) Adopt(obj *object.Object) {
	m.lastSelected = obj
}

// Forget сбрасывает ссылку, если удаляемый объект был последним выбранным
func (m *Machine) Forget(obj *object.Object) {
	if m.lastSelected == obj {
		m.lastSelected = nil
	}
}

// Reset возвращает автомат в Idle и забывает выбор
func (m *Machine) Reset() {
	m.lastSelected = nil
	m.transition(Idle)
}

// route реализует общие для всех состояний переходы
func (m *Machine) route(current State, ev Event) (State, Action) {
	switch ev.Kind {
	case EventPointerDown:
		m.selectOnly(ev.Target)
		return Selecting, ActionNone

	case EventHit:
		if m.lastSelected == nil {
			if ev.CanPlace {
				return Placing, ActionPlace
			}
			return current, ActionNone
		}
		if m.lastSelected.Selected {
			return Dragging, ActionDrag
		}
		return current, ActionNone

	case EventPointerUp:
		return Released, ActionNone
	}
	return current, ActionNone
}

// selectOnly выделяет target и снимает выделение со всех остальных объектов
func (m *Machine) selectOnly(target *object.Object) {
	if m.objects != nil {
		for _, obj := range m.objects() {
			obj.Selected = obj == target
		}
	}
	if target != nil {
		target.Selected = true
	}
	m.lastSelected = target
}

func (m *Machine) transition(next State) {
	if next == nil || next == m.current {
		return
	}
	logging.Trace("Жест: %s → %s", m.current.Name(), next.Name())
	m.current.Exit(m)
	m.current = next
	m.current.Enter(m)
}

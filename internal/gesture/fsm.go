package gesture

import "github.com/annel0/marble/internal/world/object"

// EventKind — тип события ввода
type EventKind uint8

const (
	EventPointerDown EventKind = iota // Касание: луч из точки касания
	EventHit                          // Попадание луча в плоскость в текущем кадре
	EventPointerUp                    // Палец отпущен
)

// Event — событие ввода, поступающее в автомат
type Event struct {
	Kind     EventKind
	Target   *object.Object // Объект под лучом при EventPointerDown, nil при промахе
	CanPlace bool           // Разрешено ли создавать новые объекты (режим размещения)
}

// Action сообщает сцене, что делать с попаданием в плоскость
type Action uint8

const (
	ActionNone  Action = iota // Ничего не делать
	ActionPlace               // Создать новый объект в точке попадания
	ActionDrag                // Переместить выбранный объект в точку попадания
)

// State представляет состояние автомата жеста
type State interface {
	Name() string
	Enter(m *Machine)
	Handle(m *Machine, ev Event) (State, Action)
	Exit(m *Machine)
}

// Состояния не хранят данных, поэтому используются синглтоны
var (
	Idle      State = &idleState{}
	Selecting State = &selectingState{}
	Dragging  State = &draggingState{}
	Placing   State = &placingState{}
	Released  State = &releasedState{}
)

// === Idle ===

type idleState struct{}

func (s *idleState) Name() string { return "Idle" }

func (s *idleState) Enter(m *Machine) {}

func (s *idleState) Handle(m *Machine, ev Event) (State, Action) {
	return m.route(s, ev)
}

func (s *idleState) Exit(m *Machine) {}

// === Selecting ===

type selectingState struct{}

func (s *selectingState) Name() string { return "Selecting" }

// Enter ничего не делает: выбор выполняется при обработке касания
func (s *selectingState) Enter(m *Machine) {}

func (s *selectingState) Handle(m *Machine, ev Event) (State, Action) {
	return m.route(s, ev)
}

func (s *selectingState) Exit(m *Machine) {}

// === Dragging ===

type draggingState struct{}

func (s *draggingState) Name() string { return "Dragging" }

func (s *draggingState) Enter(m *Machine) {}

func (s *draggingState) Handle(m *Machine, ev Event) (State, Action) {
	return m.route(s, ev)
}

func (s *draggingState) Exit(m *Machine) {}

// === Placing ===

type placingState struct{}

func (s *placingState) Name() string { return "Placing" }

func (s *placingState) Enter(m *Machine) {}

func (s *placingState) Handle(m *Machine, ev Event) (State, Action) {
	if ev.Kind == EventHit {
		// Новый объект уже создан и стал последним выбранным; повторно не создаём
		return s, ActionNone
	}
	return m.route(s, ev)
}

func (s *placingState) Exit(m *Machine) {}

// === Released ===

type releasedState struct{}

func (s *releasedState) Name() string { return "Released" }

// Enter снимает выделение, но сохраняет ссылку на последний выбранный объект
func (s *releasedState) Enter(m *Machine) {
	if m.lastSelected != nil {
		m.lastSelected.Selected = false
	}
}

func (s *releasedState) Handle(m *Machine, ev Event) (State, Action) {
	return m.route(s, ev)
}

func (s *releasedState) Exit(m *Machine) {}

// String возвращает строковое представление действия
func (a Action) String() string {
	switch a {
	case ActionPlace:
		return "place"
	case ActionDrag:
		return "drag"
	default:
		return "none"
	}
}

// MarshalText реализует encoding.TextMarshaler
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/marble/internal/eventbus"
	"github.com/annel0/marble/internal/gesture"
	"github.com/annel0/marble/internal/logging"
	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
	"github.com/annel0/marble/internal/world/placement"
	"github.com/annel0/marble/internal/world/registry"
)

var (
	// ErrObjectNotFound — объекта с таким ID нет в сцене
	ErrObjectNotFound = errors.New("object not found")
	// ErrNotPlacementMode — создание объектов доступно только в режиме размещения
	ErrNotPlacementMode = errors.New("scene is not in placement mode")
	// ErrNoSelection — нет последнего выбранного объекта для редактирования
	ErrNoSelection = errors.New("no object selected")
)

// MaxEditHeight — высота, которой соответствует крайнее положение ползунка высоты
const MaxEditHeight = 0.5

// Options задаёт зависимости сцены; все поля кроме Catalog необязательны
type Options struct {
	Catalog          *object.Catalog
	Placement        placement.Config
	Bus              eventbus.EventBus
	Logger           *logging.Logger
	RegistryMetrics  *registry.Metrics
	PlacementMetrics *placement.Metrics
	DefaultPrefab    string
}

// Scene — контекст сессии: владеет объектами, реестрами, движком размещения и автоматом жеста.
// Все операции жеста и изменения сцены сериализуются одним мьютексом.
type Scene struct {
	mu         sync.Mutex
	catalog    *object.Catalog
	registries *registry.Registries
	engine     *placement.Engine
	gesture    *gesture.Machine
	objects    map[uint64]*object.Object
	order      []*object.Object // Объекты в порядке создания
	nextID     uint64
	mode       Mode
	prefab     object.Prefab // Префаб для новых объектов
	bus        eventbus.EventBus
	logger     *logging.Logger
	tracer     trace.Tracer
}

// HitResult описывает, что сделала сцена с попаданием в плоскость
type HitResult struct {
	Action    gesture.Action   `json:"action"`
	Object    *object.Snapshot `json:"object,omitempty"`
	SnappedTo uint64           `json:"snapped_to,omitempty"`
	Settled   bool             `json:"settled"`
}

// Stats — сводка по сцене
type Stats struct {
	Objects      int            `json:"objects"`
	ByCategory   map[string]int `json:"by_category"`
	Mode         Mode           `json:"mode"`
	Prefab       string         `json:"prefab"`
	LastSelected uint64         `json:"last_selected"`
	Gesture      string         `json:"gesture"`
}

// NewScene создаёт пустую сцену в режиме размещения
func NewScene(opts Options) (*Scene, error) {
	if opts.Catalog == nil {
		opts.Catalog = object.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewConsoleLogger("scene")
	}
	if opts.DefaultPrefab == "" {
		opts.DefaultPrefab = "Domino"
	}

	prefab, err := opts.Catalog.Lookup(opts.DefaultPrefab)
	if err != nil {
		return nil, fmt.Errorf("default prefab: %w", err)
	}

	regs := registry.NewRegistries(opts.RegistryMetrics)
	s := &Scene{
		catalog:    opts.Catalog,
		registries: regs,
		engine:     placement.NewEngine(regs, opts.Placement, opts.PlacementMetrics),
		objects:    make(map[uint64]*object.Object),
		nextID:     1,
		mode:       ModePlacement,
		prefab:     prefab,
		bus:        opts.Bus,
		logger:     opts.Logger,
		tracer:     otel.Tracer("github.com/annel0/marble/internal/world"),
	}
	s.gesture = gesture.NewMachine(func() []*object.Object { return s.order })
	return s, nil
}

// Catalog возвращает каталог префабов сцены
func (s *Scene) Catalog() *object.Catalog {
	return s.catalog
}

// Registries возвращает реестры категорий
func (s *Scene) Registries() *registry.Registries {
	return s.registries
}

// SnapThreshold возвращает действующий радиус стыковки
func (s *Scene) SnapThreshold() float64 {
	return s.engine.SnapThreshold()
}

// SelectPrefab выбирает префаб для новых объектов
func (s *Scene) SelectPrefab(name string) (object.Prefab, error) {
	prefab, err := s.catalog.Lookup(name)
	if err != nil {
		s.logger.Warn("Префаб %q не найден", name)
		return object.Prefab{}, err
	}

	s.mu.Lock()
	s.prefab = prefab
	s.mu.Unlock()

	s.logger.Debug("Выбран префаб %s (%s)", prefab.Name, prefab.Category)
	return prefab, nil
}

// Mode возвращает текущий режим
func (s *Scene) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleMode переключает режим размещения и редактирования
func (s *Scene) ToggleMode(ctx context.Context) Mode {
	s.mu.Lock()
	s.mode = s.mode.Toggle()
	mode := s.mode
	s.mu.Unlock()

	s.logger.Info("Режим: %s", mode)
	s.publish(ctx, EventModeChanged, ModeEvent{Mode: mode})
	return mode
}

// PointerDown обрабатывает касание. id — объект под лучом, 0 — луч не попал в объект.
func (s *Scene) PointerDown(ctx context.Context, id uint64) error {
	s.mu.Lock()
	var target *object.Object
	if id != 0 {
		var ok bool
		if target, ok = s.objects[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %d", ErrObjectNotFound, id)
		}
	}
	s.gesture.PointerDown(target)
	s.mu.Unlock()

	s.publish(ctx, EventSelectionChanged, SelectionEvent{SelectedID: id})
	return nil
}

// HandleHit обрабатывает попадание луча в плоскость в текущем кадре.
// Без последнего выбранного объекта в режиме размещения создаётся новый объект,
// выбранный объект перемещается.
func (s *Scene) HandleHit(ctx context.Context, hit object.Pose) (HitResult, error) {
	ctx, span := s.tracer.Start(ctx, "scene.HandleHit")
	defer span.End()

	s.mu.Lock()
	action := s.gesture.Hit(s.mode == ModePlacement)
	span.SetAttributes(attribute.String("gesture.action", action.String()))

	switch action {
	case gesture.ActionPlace:
		decision := s.engine.ResolvePlacement(s.prefab.Category, hit)
		obj := s.spawnLocked(s.prefab, decision.Pose, s.prefab.Scale)
		s.gesture.Adopt(obj)
		snap := obj.Snapshot()
		ev := objectEvent(obj)
		s.mu.Unlock()

		if decision.Neighbor != nil {
			s.logger.Debug("Домино %d развёрнуто к домино %d", snap.ID, decision.Neighbor.ID)
		}
		s.publish(ctx, EventObjectSpawned, ev)
		return HitResult{Action: action, Object: &snap}, nil

	case gesture.ActionDrag:
		obj := s.gesture.LastSelected()
		decision := s.engine.ResolveDrag(obj, hit.Position)
		decision.Apply(obj)
		snap := obj.Snapshot()
		ev := objectEvent(obj)
		s.mu.Unlock()

		result := HitResult{Action: action, Object: &snap, Settled: decision.Settle}
		if decision.SnappedTo != nil {
			result.SnappedTo = decision.SnappedTo.ID
			s.publish(ctx, EventMarbleSnapped, SnapEvent{
				MarbleID: snap.ID,
				RampID:   decision.SnappedTo.ID,
				Position: snap.Pose.Position,
			})
		}
		s.publish(ctx, EventObjectMoved, ev)
		return result, nil
	}

	s.mu.Unlock()
	return HitResult{Action: gesture.ActionNone}, nil
}

// PointerUp снимает выделение, сохраняя последний выбранный объект для редактирования
func (s *Scene) PointerUp(ctx context.Context) {
	s.mu.Lock()
	s.gesture.PointerUp()
	s.mu.Unlock()
}

// Spawn создаёт объект префаба в заданной позе без правил размещения.
// Доступно только в режиме размещения.
func (s *Scene) Spawn(ctx context.Context, prefabName string, pose object.Pose) (object.Snapshot, error) {
	prefab, err := s.catalog.Lookup(prefabName)
	if err != nil {
		return object.Snapshot{}, err
	}

	s.mu.Lock()
	if s.mode != ModePlacement {
		s.mu.Unlock()
		return object.Snapshot{}, ErrNotPlacementMode
	}
	obj := s.spawnLocked(prefab, pose, prefab.Scale)
	snap := obj.Snapshot()
	ev := objectEvent(obj)
	s.mu.Unlock()

	s.publish(ctx, EventObjectSpawned, ev)
	return snap, nil
}

// Restore воссоздаёт объект из сохранения: поза и масштаб берутся из записи,
// скорости обнуляются. Режим сцены не проверяется.
func (s *Scene) Restore(ctx context.Context, prefab object.Prefab, pose object.Pose, scale vec.Vec3) object.Snapshot {
	s.mu.Lock()
	obj := s.restoreLocked(RestoreItem{Prefab: prefab, Pose: pose, Scale: scale})
	snap := obj.Snapshot()
	ev := objectEvent(obj)
	s.mu.Unlock()

	s.publish(ctx, EventObjectSpawned, ev)
	return snap
}

// RestoreItem — объект сохранения для Replace
type RestoreItem struct {
	Prefab object.Prefab
	Pose   object.Pose
	Scale  vec.Vec3
}

// Replace очищает сцену и воссоздаёт items за один захват блокировки:
// касания, пришедшие во время загрузки, не попадают в загруженную сцену.
// Возвращает число удалённых объектов.
func (s *Scene) Replace(ctx context.Context, items []RestoreItem) int {
	s.mu.Lock()
	removed := s.clearLocked()
	events := make([]ObjectEvent, 0, len(items))
	for _, item := range items {
		events = append(events, objectEvent(s.restoreLocked(item)))
	}
	s.mu.Unlock()

	s.logger.Info("Сцена заменена: удалено %d, восстановлено %d", removed, len(events))
	s.publish(ctx, EventSceneCleared, SceneEvent{Objects: removed})
	for _, ev := range events {
		s.publish(ctx, EventObjectSpawned, ev)
	}
	return removed
}

// restoreLocked создаёт замороженный объект и делает его последним выбранным; s.mu должен быть захвачен
func (s *Scene) restoreLocked(item RestoreItem) *object.Object {
	obj := s.spawnLocked(item.Prefab, item.Pose, item.Scale)
	obj.Body.Freeze()
	s.gesture.Adopt(obj)
	return obj
}

// spawnLocked создаёт объект и вызывает хук активации; s.mu должен быть захвачен
func (s *Scene) spawnLocked(prefab object.Prefab, pose object.Pose, scale vec.Vec3) *object.Object {
	obj := object.New(s.nextID, prefab, pose)
	s.nextID++
	if scale != vec.Zero {
		obj.Scale = scale
	}

	s.objects[obj.ID] = obj
	s.order = append(s.order, obj)
	s.registries.OnActivate(obj)

	s.logger.Debug("Создан %s #%d в (%.3f, %.3f, %.3f)", obj.Prefab, obj.ID,
		obj.Pose.Position.X, obj.Pose.Position.Y, obj.Pose.Position.Z)
	return obj
}

// Despawn удаляет объект из сцены
func (s *Scene) Despawn(ctx context.Context, id uint64) error {
	s.mu.Lock()
	obj, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrObjectNotFound, id)
	}
	ev := objectEvent(obj)
	s.despawnLocked(obj)
	s.mu.Unlock()

	s.publish(ctx, EventObjectDespawned, ev)
	return nil
}

func (s *Scene) despawnLocked(obj *object.Object) {
	s.registries.OnDeactivate(obj)
	s.gesture.Forget(obj)
	delete(s.objects, obj.ID)
	for i, o := range s.order {
		if o == obj {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear удаляет все объекты и возвращает их количество
func (s *Scene) Clear(ctx context.Context) int {
	s.mu.Lock()
	removed := s.clearLocked()
	s.mu.Unlock()

	s.logger.Info("Сцена очищена, удалено объектов: %d", removed)
	s.publish(ctx, EventSceneCleared, SceneEvent{Objects: removed})
	return removed
}

func (s *Scene) clearLocked() int {
	removed := len(s.order)
	// Удаляем с конца, чтобы не сдвигать срез
	for len(s.order) > 0 {
		s.despawnLocked(s.order[len(s.order)-1])
	}
	s.gesture.Reset()
	return removed
}

// SetRotation поворачивает последний выбранный объект вокруг вертикали.
// normalized ∈ [0, 1] соответствует целым градусам от 0 до 360.
func (s *Scene) SetRotation(ctx context.Context, normalized float64) (object.Snapshot, error) {
	degrees := math.Trunc(clamp01(normalized) * 360)
	return s.editLastSelected(ctx, func(obj *object.Object) {
		obj.Pose.Rotation = vec.FromYaw(degrees)
	})
}

// SetHeight поднимает последний выбранный объект на normalized·MaxEditHeight
func (s *Scene) SetHeight(ctx context.Context, normalized float64) (object.Snapshot, error) {
	height := clamp01(normalized) * MaxEditHeight
	return s.editLastSelected(ctx, func(obj *object.Object) {
		obj.Pose.Position = obj.Pose.Position.WithY(height)
	})
}

func (s *Scene) editLastSelected(ctx context.Context, edit func(obj *object.Object)) (object.Snapshot, error) {
	s.mu.Lock()
	obj := s.gesture.LastSelected()
	if obj == nil {
		s.mu.Unlock()
		return object.Snapshot{}, ErrNoSelection
	}
	edit(obj)
	snap := obj.Snapshot()
	ev := objectEvent(obj)
	s.mu.Unlock()

	s.publish(ctx, EventObjectMoved, ev)
	return snap, nil
}

// SetVelocity принимает скорости объекта от внешней физики и будит тело
func (s *Scene) SetVelocity(ctx context.Context, id uint64, linear, angular vec.Vec3) (object.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[id]
	if !ok {
		return object.Snapshot{}, fmt.Errorf("%w: %d", ErrObjectNotFound, id)
	}
	obj.Body.LinearVelocity = linear
	obj.Body.AngularVelocity = angular
	obj.Body.Asleep = false
	return obj.Snapshot(), nil
}

// FreezeAll обнуляет скорости всех объектов
func (s *Scene) FreezeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range s.order {
		obj.Body.Freeze()
	}
}

// Object возвращает снимок объекта по ID
func (s *Scene) Object(id uint64) (object.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return object.Snapshot{}, fmt.Errorf("%w: %d", ErrObjectNotFound, id)
	}
	return obj.Snapshot(), nil
}

// Objects возвращает снимки всех объектов в порядке создания
func (s *Scene) Objects() []object.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]object.Snapshot, 0, len(s.order))
	for _, obj := range s.order {
		out = append(out, obj.Snapshot())
	}
	return out
}

// Stats возвращает сводку по сцене
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCategory := make(map[string]int)
	for _, obj := range s.order {
		byCategory[obj.Category.String()]++
	}

	var last uint64
	if obj := s.gesture.LastSelected(); obj != nil {
		last = obj.ID
	}

	return Stats{
		Objects:      len(s.order),
		ByCategory:   byCategory,
		Mode:         s.mode,
		Prefab:       s.prefab.Name,
		LastSelected: last,
		Gesture:      s.gesture.State().Name(),
	}
}

// Announce публикует событие сцены от имени внешнего компонента (сохранение, загрузка)
func (s *Scene) Announce(ctx context.Context, eventType string, payload interface{}) {
	s.publish(ctx, eventType, payload)
}

// publish отправляет событие в шину; ошибки шины не прерывают операцию сцены
func (s *Scene) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(EventSource, eventType, payload)
	if err != nil {
		s.logger.Error("Событие %s не сформировано: %v", eventType, err)
		return
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		ev.CorrelationID = span.SpanContext().TraceID().String()
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

package save

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/marble/internal/logging"
	"github.com/annel0/marble/internal/world"
	"github.com/annel0/marble/internal/world/object"
)

// Target — сцена, которую сохраняет и восстанавливает Manager. *world.Scene реализует его.
type Target interface {
	Objects() []object.Snapshot
	FreezeAll()
	Replace(ctx context.Context, items []world.RestoreItem) int
	Catalog() *object.Catalog
	Announce(ctx context.Context, eventType string, payload interface{})
}

var _ Target = (*world.Scene)(nil)

// Result — итог сохранения или загрузки
type Result struct {
	Name    string `json:"name"`
	Objects int    `json:"objects"`
	Skipped int    `json:"skipped"`
}

// Manager связывает сцену, кодек и хранилище
type Manager struct {
	store   Store
	codec   *Codec
	target  Target
	logger  *logging.Logger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewManager создаёт менеджер сохранений. logger и metrics могут быть nil.
func NewManager(store Store, target Target, logger *logging.Logger, metrics *Metrics) (*Manager, error) {
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewConsoleLogger("save")
	}
	return &Manager{
		store:   store,
		codec:   codec,
		target:  target,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/annel0/marble/internal/save"),
		now:     time.Now,
	}, nil
}

// Store возвращает хранилище менеджера
func (m *Manager) Store() Store { return m.store }

// Save останавливает все объекты и записывает журнал трансформаций
// отслеживаемых объектов (шарики, домино, горки) в порядке создания.
func (m *Manager) Save(ctx context.Context, name string) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "save.Save", trace.WithAttributes(attribute.String("scene.name", name)))
	defer span.End()
	start := time.Now()

	if err := ValidateName(name); err != nil {
		return Result{Name: name}, err
	}

	m.target.FreezeAll()

	snap := &Snapshot{Version: FormatVersion, SavedAt: m.now().UTC()}
	for _, obj := range m.target.Objects() {
		if !obj.Category.Tracked() {
			continue
		}
		snap.Records = append(snap.Records, RecordFrom(obj))
	}

	data, err := m.codec.Encode(snap)
	if err == nil {
		err = m.store.Save(ctx, name, data)
	}
	m.metrics.observe("save", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Error("Не удалось сохранить сцену %s: %v", name, err)
		return Result{Name: name}, err
	}

	res := Result{Name: name, Objects: len(snap.Records)}
	span.SetAttributes(attribute.Int("scene.objects", res.Objects))
	m.logger.Info("Сцена %s сохранена: %d объектов, %d байт", name, res.Objects, len(data))
	m.target.Announce(ctx, world.EventSceneSaved, world.SceneEvent{Name: name, Objects: res.Objects})
	return res, nil
}

// Load очищает сцену и воспроизводит записи сохранения по порядку.
// Если сохранение не найдено или повреждено, сцена не изменяется.
func (m *Manager) Load(ctx context.Context, name string) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "save.Load", trace.WithAttributes(attribute.String("scene.name", name)))
	defer span.End()
	start := time.Now()

	snap, err := m.read(ctx, name)
	m.metrics.observe("load", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Warn("Не удалось загрузить сцену %s: %v", name, err)
		return Result{Name: name}, err
	}

	res := Result{Name: name}
	catalog := m.target.Catalog()
	items := make([]world.RestoreItem, 0, len(snap.Records))
	for i, rec := range snap.Records {
		prefab, ok := resolvePrefab(catalog, rec)
		if !ok {
			res.Skipped++
			m.logger.Warn("Сцена %s: запись %d с неизвестным тегом %q пропущена", name, i, rec.Tag)
			continue
		}
		items = append(items, world.RestoreItem{Prefab: prefab, Pose: rec.Pose(), Scale: rec.Scale})
	}
	m.target.Replace(ctx, items)
	res.Objects = len(items)
	m.metrics.skip(res.Skipped)

	span.SetAttributes(attribute.Int("scene.objects", res.Objects), attribute.Int("scene.skipped", res.Skipped))
	m.logger.Info("Сцена %s загружена: %d объектов, пропущено %d", name, res.Objects, res.Skipped)
	m.target.Announce(ctx, world.EventSceneLoaded, world.SceneEvent{Name: name, Objects: res.Objects, Skipped: res.Skipped})
	return res, nil
}

// Inspect читает сохранение без изменения сцены
func (m *Manager) Inspect(ctx context.Context, name string) (*Snapshot, error) {
	return m.read(ctx, name)
}

func (m *Manager) read(ctx context.Context, name string) (*Snapshot, error) {
	data, err := m.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	snap, err := m.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("сцена %s: %w", name, err)
	}
	return snap, nil
}

// Close закрывает кодек и хранилище
func (m *Manager) Close() error {
	m.codec.Close()
	return m.store.Close()
}

// resolvePrefab выбирает префаб по имени из записи, если он совпадает с тегом,
// иначе первый префаб категории тега.
func resolvePrefab(catalog *object.Catalog, rec Record) (object.Prefab, bool) {
	category, err := object.ParseCategory(rec.Tag)
	if err != nil || !category.Tracked() {
		return object.Prefab{}, false
	}
	if rec.Prefab != "" {
		if prefab, err := catalog.Lookup(rec.Prefab); err == nil && prefab.Category == category {
			return prefab, true
		}
	}
	return catalog.ForCategory(category)
}

package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/marble/internal/vec"
)

// ErrUnknownPrefab возвращается при обращении к отсутствующему в каталоге префабу
var ErrUnknownPrefab = errors.New("unknown prefab")

// Prefab описывает шаблон, из которого создаются объекты сцены
type Prefab struct {
	Name     string           `json:"name"`
	Category Category         `json:"category"`
	Scale    vec.Vec3         `json:"scale"`
	SnapZone *AttachmentPoint `json:"snap_zone,omitempty"`
}

// Catalog — потокобезопасный справочник префабов по имени
type Catalog struct {
	mu      sync.RWMutex
	prefabs map[string]Prefab
}

// NewCatalog создаёт каталог из переданных префабов
func NewCatalog(prefabs ...Prefab) *Catalog {
	c := &Catalog{prefabs: make(map[string]Prefab, len(prefabs))}
	for _, p := range prefabs {
		c.Add(p)
	}
	return c
}

// Add регистрирует или заменяет префаб
func (c *Catalog) Add(p Prefab) {
	if p.Scale == vec.Zero {
		p.Scale = vec.One
	}
	c.mu.Lock()
	c.prefabs[strings.ToLower(p.Name)] = p
	c.mu.Unlock()
}

// Lookup ищет префаб по имени без учёта регистра
func (c *Catalog) Lookup(name string) (Prefab, error) {
	c.mu.RLock()
	p, ok := c.prefabs[strings.ToLower(strings.TrimSpace(name))]
	c.mu.RUnlock()
	if !ok {
		return Prefab{}, fmt.Errorf("%w: %q", ErrUnknownPrefab, name)
	}
	return p, nil
}

// ForCategory возвращает первый по имени префаб категории.
// Используется при загрузке сохранений, где записан только тег категории.
func (c *Catalog) ForCategory(category Category) (Prefab, bool) {
	for _, p := range c.List() {
		if p.Category == category {
			return p, true
		}
	}
	return Prefab{}, false
}

// List возвращает все префабы, отсортированные по имени
func (c *Catalog) List() []Prefab {
	c.mu.RLock()
	out := make([]Prefab, 0, len(c.prefabs))
	for _, p := range c.prefabs {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// rampZone строит точку стыковки над входом горки
func rampZone(x, y, z float64) *AttachmentPoint {
	return &AttachmentPoint{
		Name:  SnapZoneName,
		Local: NewPose(vec.Vec3{X: x, Y: y, Z: z}),
	}
}

// DefaultCatalog возвращает набор префабов песочницы
func DefaultCatalog() *Catalog {
	small := vec.Vec3{X: 0.05, Y: 0.05, Z: 0.05}

	return NewCatalog(
		Prefab{Name: "Domino", Category: CategoryDomino, Scale: vec.Vec3{X: 0.02, Y: 0.1, Z: 0.05}},
		Prefab{Name: "Marble", Category: CategoryMarble, Scale: vec.Vec3{X: 0.02, Y: 0.02, Z: 0.02}},
		Prefab{Name: "SimpleRamp", Category: CategoryRamp, Scale: vec.One, SnapZone: rampZone(0, 0.12, -0.08)},
		Prefab{Name: "SpiralRamp", Category: CategoryRamp, Scale: vec.One, SnapZone: rampZone(0.03, 0.25, 0)},

		Prefab{Name: "Cannon", Category: CategoryProp, Scale: vec.Vec3{X: 0.1, Y: 0.1, Z: 0.1}},
		Prefab{Name: "Cannonball", Category: CategoryProp, Scale: vec.Vec3{X: 0.03, Y: 0.03, Z: 0.03}},
		Prefab{Name: "Star", Category: CategoryProp, Scale: small},
		Prefab{Name: "ToiletRoll", Category: CategoryProp, Scale: small},
		Prefab{Name: "Zigzag", Category: CategoryProp, Scale: vec.One},
		Prefab{Name: "Limacon", Category: CategoryProp, Scale: vec.One},
		Prefab{Name: "Hypotrochoid", Category: CategoryProp, Scale: vec.One},
		Prefab{Name: "Cycloid2Loop", Category: CategoryProp, Scale: vec.One},
		Prefab{Name: "Cola Can", Category: CategoryProp, Scale: small},
	)
}

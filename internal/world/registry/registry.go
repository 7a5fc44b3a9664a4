package registry

import (
	"math"
	"sync"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

// Registry хранит множество живых объектов одной категории.
// Порядок обхода совпадает с порядком регистрации, поэтому при равных
// расстояниях FindNearest всегда возвращает один и тот же объект.
type Registry struct {
	category object.Category
	members  []*object.Object       // Объекты в порядке регистрации
	index    map[*object.Object]int // Позиция объекта в members
	mu       sync.RWMutex           // Мьютекс для безопасного доступа
	onChange func(category object.Category, size int)
}

// New создаёт пустой реестр для категории
func New(category object.Category) *Registry {
	return &Registry{
		category: category,
		index:    make(map[*object.Object]int),
	}
}

// Category возвращает категорию реестра
func (r *Registry) Category() object.Category {
	return r.category
}

// Register добавляет объект в реестр. Повторная регистрация ничего не меняет.
func (r *Registry) Register(obj *object.Object) {
	if obj == nil {
		return
	}

	r.mu.Lock()
	if _, exists := r.index[obj]; exists {
		r.mu.Unlock()
		return
	}
	r.index[obj] = len(r.members)
	r.members = append(r.members, obj)
	size := len(r.members)
	r.mu.Unlock()

	r.notify(size)
}

// Unregister удаляет объект из реестра, если он там есть
func (r *Registry) Unregister(obj *object.Object) {
	r.mu.Lock()
	pos, exists := r.index[obj]
	if !exists {
		r.mu.Unlock()
		return
	}

	// Сдвигаем хвост, чтобы сохранить порядок регистрации
	copy(r.members[pos:], r.members[pos+1:])
	r.members[len(r.members)-1] = nil
	r.members = r.members[:len(r.members)-1]
	delete(r.index, obj)
	for i := pos; i < len(r.members); i++ {
		r.index[r.members[i]] = i
	}
	size := len(r.members)
	r.mu.Unlock()

	r.notify(size)
}

// Contains сообщает, зарегистрирован ли объект
func (r *Registry) Contains(obj *object.Object) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.index[obj]
	return exists
}

// Len возвращает количество объектов в реестре
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Members возвращает копию списка объектов в порядке регистрации
func (r *Registry) Members() []*object.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*object.Object, len(r.members))
	copy(out, r.members)
	return out
}

// FindNearest возвращает объект с минимальным квадратом расстояния до point.
// Для пустого реестра возвращает (nil, false); объекты с NaN координатами не выбираются.
func (r *Registry) FindNearest(point vec.Vec3) (*object.Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nearest *object.Object
	best := math.Inf(1)
	for _, obj := range r.members {
		d := obj.Position().SqrDistanceTo(point)
		// Строгое сравнение: при равенстве побеждает зарегистрированный раньше, NaN не выбирается
		if d < best {
			nearest = obj
			best = d
		}
	}
	return nearest, nearest != nil
}

func (r *Registry) notify(size int) {
	if r.onChange != nil {
		r.onChange(r.category, size)
	}
}

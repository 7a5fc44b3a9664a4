package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

func makeObjects(n int) []*object.Object {
	objs := make([]*object.Object, n)
	for i := range objs {
		objs[i] = object.New(uint64(i+1), object.Prefab{Name: "Domino", Category: object.CategoryDomino},
			object.NewPose(vec.Vec3{X: float64(i)}))
	}
	return objs
}

func newMachine(objs []*object.Object) *Machine {
	return NewMachine(func() []*object.Object { return objs })
}

func selectedCount(objs []*object.Object) int {
	n := 0
	for _, o := range objs {
		if o.Selected {
			n++
		}
	}
	return n
}

func TestMachine_SingleSelection(t *testing.T) {
	for _, n := range []int{2, 3, 10} {
		objs := makeObjects(n)
		m := newMachine(objs)

		for i := range objs {
			m.PointerDown(objs[i])
			assert.True(t, objs[i].Selected)
			assert.Equal(t, 1, selectedCount(objs), "после выбора %d из %d выделен не один объект", i, n)
			if i > 0 {
				assert.False(t, objs[i-1].Selected, "предыдущий выбор должен сниматься")
			}
		}
	}
}

func TestMachine_SelectionClearsStaleFlags(t *testing.T) {
	objs := makeObjects(3)
	// Несколько объектов выделены в обход автомата
	objs[0].Selected = true
	objs[2].Selected = true

	m := newMachine(objs)
	m.PointerDown(objs[1])
	assert.Equal(t, 1, selectedCount(objs))
	assert.True(t, objs[1].Selected)
}

func TestMachine_DragLifecycle(t *testing.T) {
	objs := makeObjects(2)
	m := newMachine(objs)
	assert.Equal(t, Idle, m.State())

	m.PointerDown(objs[0])
	assert.Equal(t, Selecting, m.State())

	assert.Equal(t, ActionDrag, m.Hit(true))
	assert.Equal(t, Dragging, m.State())
	assert.Equal(t, ActionDrag, m.Hit(false), "перетаскивание разрешено и в режиме редактирования")

	m.PointerUp()
	assert.Equal(t, Idle, m.State(), "после отпускания автомат возвращается в Idle")
	assert.False(t, objs[0].Selected)
	assert.Same(t, objs[0], m.LastSelected(), "последний выбранный сохраняется для редактирования")

	// Без нового выбора попадания ничего не делают
	assert.Equal(t, ActionNone, m.Hit(true))
}

func TestMachine_PlaceOnMiss(t *testing.T) {
	objs := makeObjects(1)
	m := newMachine(objs)
	m.PointerDown(objs[0])
	m.PointerUp()

	// Промах сбрасывает последний выбранный объект
	m.PointerDown(nil)
	assert.Nil(t, m.LastSelected())
	assert.Equal(t, 0, selectedCount(objs))

	assert.Equal(t, ActionNone, m.Hit(false), "в режиме редактирования объекты не создаются")
	assert.Equal(t, ActionPlace, m.Hit(true))
	assert.Equal(t, Placing, m.State())

	spawned := makeObjects(1)[0]
	m.Adopt(spawned)
	assert.Equal(t, ActionNone, m.Hit(true), "за одно касание создаётся один объект")
	assert.False(t, spawned.Selected)

	m.PointerUp()
	assert.Same(t, spawned, m.LastSelected())
}

func TestMachine_ReleaseWithoutSelectionIsNoop(t *testing.T) {
	m := newMachine(nil)
	require.NotPanics(t, func() {
		m.PointerUp()
		m.PointerUp()
	})
	assert.Equal(t, Idle, m.State())
	assert.Nil(t, m.LastSelected())
}

func TestMachine_ForgetAndReset(t *testing.T) {
	objs := makeObjects(2)
	m := newMachine(objs)
	m.PointerDown(objs[1])

	m.Forget(objs[0])
	assert.Same(t, objs[1], m.LastSelected(), "удаление другого объекта не влияет на выбор")

	m.Forget(objs[1])
	assert.Nil(t, m.LastSelected())

	m.PointerDown(objs[0])
	m.Reset()
	assert.Nil(t, m.LastSelected())
	assert.Equal(t, Idle, m.State())
}

package world

import (
	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world/object"
)

// Типы событий сцены, публикуемых в шину
const (
	EventObjectSpawned    = "object.spawned"
	EventObjectDespawned  = "object.despawned"
	EventObjectMoved      = "object.moved"
	EventMarbleSnapped    = "marble.snapped"
	EventSelectionChanged = "selection.changed"
	EventModeChanged      = "mode.changed"
	EventSceneSaved       = "scene.saved"
	EventSceneLoaded      = "scene.loaded"
	EventSceneCleared     = "scene.cleared"
)

// EventSource — имя источника событий сцены
const EventSource = "marble.scene"

// ObjectEvent — полезная нагрузка событий об отдельном объекте
type ObjectEvent struct {
	ID       uint64          `json:"id"`
	Prefab   string          `json:"prefab"`
	Category object.Category `json:"category"`
	Pose     object.Pose     `json:"pose"`
}

// SnapEvent — шарик пристыкован к горке
type SnapEvent struct {
	MarbleID uint64   `json:"marble_id"`
	RampID   uint64   `json:"ramp_id"`
	Position vec.Vec3 `json:"position"`
}

// SelectionEvent — изменился выбранный объект (0 — ничего не выбрано)
type SelectionEvent struct {
	SelectedID uint64 `json:"selected_id"`
}

// ModeEvent — переключение режима
type ModeEvent struct {
	Mode Mode `json:"mode"`
}

// SceneEvent — сохранение, загрузка или очистка сцены
type SceneEvent struct {
	Name    string `json:"name,omitempty"`
	Objects int    `json:"objects"`
	Skipped int    `json:"skipped,omitempty"`
}

func objectEvent(obj *object.Object) ObjectEvent {
	return ObjectEvent{ID: obj.ID, Prefab: obj.Prefab, Category: obj.Category, Pose: obj.Pose}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/marble/internal/auth"
	"github.com/annel0/marble/internal/save"
	"github.com/annel0/marble/internal/vec"
	"github.com/annel0/marble/internal/world"
	"github.com/annel0/marble/internal/world/object"
	"github.com/gin-gonic/gin"
)

// TokenRequest представляет запрос на получение токена
type TokenRequest struct {
	ClientID  string `json:"client_id" binding:"required"`
	AccessKey string `json:"access_key"`
}

// TokenResponse представляет выданный токен
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PrefabRequest выбирает префаб для следующих размещений
type PrefabRequest struct {
	Name string `json:"name" binding:"required"`
}

// PointerDownRequest — касание; ObjectID == 0 означает промах
type PointerDownRequest struct {
	ObjectID uint64 `json:"object_id"`
}

// HitRequest — попадание луча в плоскость. Rotation == nil означает позу плоскости без поворота
type HitRequest struct {
	Position vec.Vec3        `json:"position"`
	Rotation *vec.Quaternion `json:"rotation,omitempty"`
}

// SliderRequest — значение ползунка в [0, 1]
type SliderRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// VelocityRequest задаёт скорости тела, сообщённые физикой
type VelocityRequest struct {
	Linear  vec.Vec3 `json:"linear"`
	Angular vec.Vec3 `json:"angular"`
}

// SceneRequest — имя сохранения; пусто означает сохранение по умолчанию
type SceneRequest struct {
	Name string `json:"name"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

// respondDomainError переводит ошибки сцены и хранилища в HTTP статусы
func (rs *RestServer) respondDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, world.ErrObjectNotFound), errors.Is(err, save.ErrSceneNotFound):
		status = http.StatusNotFound
	case errors.Is(err, object.ErrUnknownPrefab), errors.Is(err, save.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, world.ErrNotPlacementMode), errors.Is(err, world.ErrNoSelection):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrAccessDenied):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		rs.logger.Error("Ошибка обработки %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	respondError(c, status, err.Error())
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Неверный идентификатор объекта")
		return 0, false
	}
	return id, true
}

// handleHealth проверка состояния
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"objects": len(rs.scene.Objects()),
		"uptime":  rs.metrics.GetUptime(),
	})
}

// handleToken выдаёт JWT токен клиенту
func (rs *RestServer) handleToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	token, expires, err := rs.issuer.Authorize(req.ClientID, req.AccessKey)
	if err != nil {
		rs.logger.Warn("Отказ в токене для клиента %s: %v", req.ClientID, err)
		rs.respondDomainError(c, err)
		return
	}

	rs.logger.Info("Выдан токен клиенту %s", req.ClientID)
	respondOK(c, "Токен выдан", TokenResponse{Token: token, ExpiresAt: expires})
}

func (rs *RestServer) handleListObjects(c *gin.Context) {
	respondOK(c, "", rs.scene.Objects())
}

func (rs *RestServer) handleGetObject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	snap, err := rs.scene.Object(id)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "", snap)
}

func (rs *RestServer) handleDeleteObject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := rs.scene.Despawn(c.Request.Context(), id); err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "Объект удалён", nil)
}

func (rs *RestServer) handleSetVelocity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req VelocityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	snap, err := rs.scene.SetVelocity(c.Request.Context(), id, req.Linear, req.Angular)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "", snap)
}

func (rs *RestServer) handleListPrefabs(c *gin.Context) {
	respondOK(c, "", rs.scene.Catalog().List())
}

func (rs *RestServer) handleSelectPrefab(c *gin.Context) {
	var req PrefabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	prefab, err := rs.scene.SelectPrefab(req.Name)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "Префаб выбран", prefab)
}

func (rs *RestServer) handleToggleMode(c *gin.Context) {
	mode := rs.scene.ToggleMode(c.Request.Context())
	respondOK(c, "", gin.H{"mode": mode})
}

func (rs *RestServer) handlePointerDown(c *gin.Context) {
	var req PointerDownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if err := rs.scene.PointerDown(c.Request.Context(), req.ObjectID); err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "", rs.scene.Stats())
}

func (rs *RestServer) handlePointerHit(c *gin.Context) {
	var req HitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	pose := object.NewPose(req.Position)
	if req.Rotation != nil {
		pose.Rotation = req.Rotation.Normalized()
	}
	res, err := rs.scene.HandleHit(c.Request.Context(), pose)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, res.Action.String(), res)
}

func (rs *RestServer) handlePointerUp(c *gin.Context) {
	rs.scene.PointerUp(c.Request.Context())
	respondOK(c, "", rs.scene.Stats())
}

func (rs *RestServer) handleEditRotation(c *gin.Context) {
	rs.handleSlider(c, rs.scene.SetRotation)
}

func (rs *RestServer) handleEditHeight(c *gin.Context) {
	rs.handleSlider(c, rs.scene.SetHeight)
}

func (rs *RestServer) handleSlider(c *gin.Context, apply func(ctx context.Context, v float64) (object.Snapshot, error)) {
	var req SliderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	snap, err := apply(c.Request.Context(), *req.Value)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "", snap)
}

func (rs *RestServer) sceneName(c *gin.Context) (string, bool) {
	var req SceneRequest
	// Пустое тело допустимо: используется имя по умолчанию
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Неверный формат запроса")
			return "", false
		}
	}
	if req.Name == "" {
		req.Name = rs.defaultScene
	}
	return req.Name, true
}

func (rs *RestServer) savesAvailable(c *gin.Context) bool {
	if rs.saves == nil {
		respondError(c, http.StatusServiceUnavailable, "Хранилище сохранений не настроено")
		return false
	}
	return true
}

func (rs *RestServer) handleListScenes(c *gin.Context) {
	if !rs.savesAvailable(c) {
		return
	}
	names, err := rs.saves.Store().List(c.Request.Context())
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "", names)
}

func (rs *RestServer) handleSaveScene(c *gin.Context) {
	if !rs.savesAvailable(c) {
		return
	}
	name, ok := rs.sceneName(c)
	if !ok {
		return
	}
	res, err := rs.saves.Save(c.Request.Context(), name)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "Сцена сохранена", res)
}

func (rs *RestServer) handleLoadScene(c *gin.Context) {
	if !rs.savesAvailable(c) {
		return
	}
	name, ok := rs.sceneName(c)
	if !ok {
		return
	}
	res, err := rs.saves.Load(c.Request.Context(), name)
	if err != nil {
		rs.respondDomainError(c, err)
		return
	}
	respondOK(c, "Сцена загружена", res)
}

func (rs *RestServer) handleClearScene(c *gin.Context) {
	removed := rs.scene.Clear(c.Request.Context())
	respondOK(c, "Сцена очищена", gin.H{"removed": removed})
}

// handleStats возвращает сводку по сцене и процессу
func (rs *RestServer) handleStats(c *gin.Context) {
	respondOK(c, "", gin.H{
		"scene":          rs.scene.Stats(),
		"registry":       rs.scene.Registries().Counts(),
		"snap_threshold": rs.scene.SnapThreshold(),
		"server":         rs.metrics.Snapshot(),
	})
}

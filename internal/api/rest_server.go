package api

import (
	"net/http"

	"github.com/annel0/marble/internal/auth"
	"github.com/annel0/marble/internal/logging"
	"github.com/annel0/marble/internal/middleware"
	"github.com/annel0/marble/internal/save"
	"github.com/annel0/marble/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API сцены
type RestServer struct {
	router       *gin.Engine
	scene        *world.Scene
	saves        *save.Manager
	issuer       *auth.Issuer
	requireAuth  bool
	defaultScene string
	port         string
	metrics      *ServerMetrics
	logger       *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port         string        // адрес для запуска сервера, например ":8088"
	GinMode      string        // debug | release | test
	Scene        *world.Scene  // сцена
	Saves        *save.Manager // сохранения; nil отключает /api/scene/save и /load
	Issuer       *auth.Issuer  // издатель токенов
	RequireAuth  bool          // требовать JWT для /api
	DefaultScene string        // имя сохранения по умолчанию

	// Регистр для HTTP-метрик и источник для /metrics; nil означает дефолтный регистр
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.GinMode == "" {
		config.GinMode = gin.ReleaseMode
	}
	if config.Issuer == nil {
		config.Issuer = auth.NewIssuer("", "", 0)
	}
	if config.DefaultScene == "" {
		config.DefaultScene = "objects"
	}
	if config.Logger == nil {
		config.Logger = logging.NewConsoleLogger("api")
	}

	gin.SetMode(config.GinMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("marble_api"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("marble", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:       router,
		scene:        config.Scene,
		saves:        config.Saves,
		issuer:       config.Issuer,
		requireAuth:  config.RequireAuth,
		defaultScene: config.DefaultScene,
		port:         config.Port,
		metrics:      NewServerMetrics(),
		logger:       config.Logger,
	}

	server.setupRoutes()
	return server
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")

	// Получение токена (без JWT защиты)
	api.POST("/auth/token", rs.handleToken)

	protected := api.Group("/")
	if rs.requireAuth {
		protected.Use(middleware.RequireToken(rs.issuer))
	}
	{
		protected.GET("/objects", rs.handleListObjects)
		protected.GET("/objects/:id", rs.handleGetObject)
		protected.DELETE("/objects/:id", rs.handleDeleteObject)
		protected.POST("/objects/:id/velocity", rs.handleSetVelocity)

		protected.GET("/prefabs", rs.handleListPrefabs)
		protected.POST("/prefab", rs.handleSelectPrefab)
		protected.POST("/mode/toggle", rs.handleToggleMode)

		protected.POST("/pointer/down", rs.handlePointerDown)
		protected.POST("/pointer/hit", rs.handlePointerHit)
		protected.POST("/pointer/up", rs.handlePointerUp)

		protected.POST("/edit/rotation", rs.handleEditRotation)
		protected.POST("/edit/height", rs.handleEditHeight)

		protected.GET("/scenes", rs.handleListScenes)
		protected.POST("/scene/save", rs.handleSaveScene)
		protected.POST("/scene/load", rs.handleLoadScene)
		protected.POST("/scene/clear", rs.handleClearScene)

		protected.GET("/stats", rs.handleStats)
	}
}

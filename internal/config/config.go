package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Placement PlacementConfig `yaml:"placement"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort    int    `yaml:"rest_port"`
	MetricsPort int    `yaml:"metrics_port"`
	GinMode     string `yaml:"gin_mode"` // debug | release | test
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "MARBLE_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений.
// 0 в конфиге и окружении означает порт по умолчанию; метрики также доступны на REST /metrics.
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "MARBLE_METRICS_PORT", 2112)
}

type PlacementConfig struct {
	SnapThreshold float64 `yaml:"snap_threshold"`
	DefaultPrefab string  `yaml:"default_prefab"`
}

// GetSnapThreshold возвращает радиус стыковки: config -> env -> 0.075
func (p *PlacementConfig) GetSnapThreshold() float64 {
	if p.SnapThreshold > 0 {
		return p.SnapThreshold
	}
	if envVal := os.Getenv("MARBLE_SNAP_THRESHOLD"); envVal != "" {
		if v, err := strconv.ParseFloat(envVal, 64); err == nil && v > 0 {
			return v
		}
	}
	return 0.075
}

// GetDefaultPrefab возвращает префаб, выбранный при старте
func (p *PlacementConfig) GetDefaultPrefab() string {
	if p.DefaultPrefab == "" {
		return "Domino"
	}
	return p.DefaultPrefab
}

// Поддерживаемые хранилища сохранений
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageBadger = "badger"
	StorageRedis  = "redis"
	StorageMaria  = "maria"
	StorageMongo  = "mongo"
)

type StorageConfig struct {
	Backend      string      `yaml:"backend"`
	Path         string      `yaml:"path"` // Каталог для file и badger
	DefaultScene string      `yaml:"default_scene"`
	Redis        RedisConfig `yaml:"redis"`
	Maria        MariaConfig `yaml:"maria"`
	Mongo        MongoConfig `yaml:"mongo"`
	Cache        CacheConfig `yaml:"cache"`
}

// CacheConfig включает Redis-кеш перед постоянным хранилищем
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// GetTTL возвращает срок жизни записи кеша
func (c *CacheConfig) GetTTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTLHours int    `yaml:"ttl_hours"` // 0 — без срока хранения
}

type MariaConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DSN возвращает строку подключения для go-sql-driver/mysql
func (m *MariaConfig) DSN() string {
	host := m.Host
	if host == "" {
		host = "localhost"
	}
	port := m.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		m.Username, m.Password, host, port, m.Database)
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// GetBackend возвращает тип хранилища, по умолчанию file
func (s *StorageConfig) GetBackend() string {
	if s.Backend == "" {
		return StorageFile
	}
	return strings.ToLower(s.Backend)
}

// GetPath возвращает каталог данных
func (s *StorageConfig) GetPath() string {
	if s.Path == "" {
		return "data"
	}
	return s.Path
}

// GetDefaultScene возвращает имя сохранения по умолчанию
func (s *StorageConfig) GetDefaultScene() string {
	if s.DefaultScene == "" {
		return "objects"
	}
	return s.DefaultScene
}

// Поддерживаемые шины событий
const (
	EventBusMemory    = "memory"
	EventBusJetStream = "jetstream"
)

type EventBusConfig struct {
	Backend   string `yaml:"backend"`
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Subject   string `yaml:"subject"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

// GetBackend возвращает тип шины: jetstream, если задан URL, иначе memory
func (e *EventBusConfig) GetBackend() string {
	if e.Backend != "" {
		return strings.ToLower(e.Backend)
	}
	if e.URL != "" {
		return EventBusJetStream
	}
	return EventBusMemory
}

// GetRetention возвращает срок хранения событий в JetStream
func (e *EventBusConfig) GetRetention() time.Duration {
	if e.Retention <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.Retention) * time.Hour
}

// GetBuffer возвращает размер буфера in-memory шины
func (e *EventBusConfig) GetBuffer() int {
	if e.Buffer <= 0 {
		return 1024
	}
	return e.Buffer
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// GetServiceName возвращает имя сервиса для трассировки
func (t *TelemetryConfig) GetServiceName() string {
	if t.ServiceName == "" {
		return "marble-scene"
	}
	return t.ServiceName
}

type AuthConfig struct {
	Secret          string `yaml:"secret"`     // Пустой секрет отключает проверку токенов
	AccessKey       string `yaml:"access_key"` // Ключ клиента для получения токена
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// GetSecret возвращает секрет JWT: config -> env MARBLE_JWT_SECRET
func (a *AuthConfig) GetSecret() string {
	if a.Secret != "" {
		return a.Secret
	}
	return os.Getenv("MARBLE_JWT_SECRET")
}

// GetTokenTTL возвращает срок жизни токена
func (a *AuthConfig) GetTokenTTL() time.Duration {
	if a.TokenTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет значения, которые нельзя исправить подстановкой дефолтов
func (c *Config) Validate() error {
	if c.Placement.SnapThreshold < 0 {
		return fmt.Errorf("placement.snap_threshold must be positive, got %v", c.Placement.SnapThreshold)
	}

	switch c.Storage.GetBackend() {
	case StorageFile, StorageMemory, StorageBadger, StorageRedis, StorageMaria, StorageMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.Cache.Enabled {
		switch c.Storage.GetBackend() {
		case StorageRedis, StorageMemory:
			return fmt.Errorf("storage.cache is pointless for %s backend", c.Storage.GetBackend())
		}
	}

	switch c.EventBus.GetBackend() {
	case EventBusMemory:
	case EventBusJetStream:
		if c.EventBus.URL == "" {
			return fmt.Errorf("eventbus.url is required for jetstream")
		}
	default:
		return fmt.Errorf("unknown eventbus backend %q", c.EventBus.Backend)
	}
	return nil
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать путь из ENV MARBLE_CONFIG;
// если и он не задан, возвращает пустую конфигурацию (действуют дефолты геттеров).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MARBLE_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

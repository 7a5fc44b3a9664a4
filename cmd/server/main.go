package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/marble/internal/api"
	"github.com/annel0/marble/internal/auth"
	"github.com/annel0/marble/internal/config"
	"github.com/annel0/marble/internal/eventbus"
	"github.com/annel0/marble/internal/logging"
	"github.com/annel0/marble/internal/observability"
	"github.com/annel0/marble/internal/save"
	"github.com/annel0/marble/internal/world"
	"github.com/annel0/marble/internal/world/placement"
	"github.com/annel0/marble/internal/world/registry"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: $MARBLE_CONFIG)")
	loadOnStart := flag.Bool("load", false, "Restore the default scene on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	applyLogLevels(cfg.Logging)

	logging.Info("🎲 Запуск сервера песочницы mARble...")

	if err := run(cfg, *loadOnStart); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func run(cfg *config.Config, loadOnStart bool) error {
	ctx := context.Background()

	// === ТРАССИРОВКА ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName(), cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("инициализация OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === ШИНА СОБЫТИЙ ===
	bus, err := openBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("events")); err != nil {
		return fmt.Errorf("подписка логгера событий: %w", err)
	}

	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start()
	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), reg)
	defer exporter.Stop()

	// === СЦЕНА ===
	scene, err := world.NewScene(world.Options{
		Placement:        placement.Config{SnapThreshold: cfg.Placement.GetSnapThreshold()},
		Bus:              bus,
		Logger:           logging.GetSceneLogger(),
		RegistryMetrics:  registry.NewMetrics(reg),
		PlacementMetrics: placement.NewMetrics(reg),
		DefaultPrefab:    cfg.Placement.GetDefaultPrefab(),
	})
	if err != nil {
		return fmt.Errorf("создание сцены: %w", err)
	}
	logging.Info("📐 Радиус стыковки шарика: %.3f", scene.SnapThreshold())

	// === СОХРАНЕНИЯ ===
	store, err := save.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("хранилище сохранений (%s): %w", cfg.Storage.GetBackend(), err)
	}
	saves, err := save.NewManager(store, scene, logging.GetStorageLogger(), save.NewMetrics(reg))
	if err != nil {
		store.Close()
		return fmt.Errorf("менеджер сохранений: %w", err)
	}
	defer saves.Close()
	logging.Info("💾 Хранилище сохранений: %s", cfg.Storage.GetBackend())

	if loadOnStart {
		res, err := saves.Load(ctx, cfg.Storage.GetDefaultScene())
		if err != nil {
			logging.Warn("Сцена %s не восстановлена: %v", cfg.Storage.GetDefaultScene(), err)
		} else {
			logging.Info("Восстановлено объектов: %d", res.Objects)
		}
	}

	// === REST API ===
	secret := cfg.Auth.GetSecret()
	restServer := api.NewRestServer(api.Config{
		Port:         fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		GinMode:      cfg.Server.GinMode,
		Scene:        scene,
		Saves:        saves,
		Issuer:       auth.NewIssuer(secret, cfg.Auth.AccessKey, cfg.Auth.GetTokenTTL()),
		RequireAuth:  secret != "",
		DefaultScene: cfg.Storage.GetDefaultScene(),
		Registerer:   reg,
		Gatherer:     reg,
		Logger:       logging.GetAPILogger(),
	})
	if secret == "" {
		logging.Warn("⚠️  auth.secret не задан: REST API доступен без токена")
	}

	server := api.NewServerIntegration(restServer)
	if err := server.Start(); err != nil {
		return err
	}

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case serveErr = <-server.Errors():
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	return serveErr
}

func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	switch cfg.GetBackend() {
	case config.EventBusJetStream:
		bus, err := eventbus.NewJetStreamBus(eventbus.JetStreamConfig{
			URL:       cfg.URL,
			Stream:    cfg.Stream,
			Subject:   cfg.Subject,
			Retention: cfg.GetRetention(),
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к JetStream: %w", err)
		}
		logging.Info("📨 Шина событий: JetStream %s", cfg.URL)
		return bus, nil
	default:
		logging.Info("📨 Шина событий: in-memory (буфер %d)", cfg.GetBuffer())
		return eventbus.NewMemoryBus(cfg.GetBuffer()), nil
	}
}

func applyLogLevels(cfg config.LoggingConfig) {
	console, err := logging.ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		logging.Warn("%v, используется INFO", err)
	}
	file := logging.DEBUG
	if cfg.FileLevel != "" {
		if file, err = logging.ParseLevel(cfg.FileLevel); err != nil {
			logging.Warn("%v, используется INFO", err)
		}
	}
	logging.SetDefaultLevels(console, file)
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ServerIntegration управляет жизненным циклом HTTP сервера REST API
type ServerIntegration struct {
	restServer *RestServer
	httpServer *http.Server
	listener   net.Listener
	errCh      chan error
}

// NewServerIntegration оборачивает REST сервер для запуска и graceful shutdown
func NewServerIntegration(restServer *RestServer) *ServerIntegration {
	return &ServerIntegration{
		restServer: restServer,
		errCh:      make(chan error, 1),
	}
}

// Start открывает порт и запускает сервер в отдельной горутине.
// Ошибка занятого порта возвращается сразу.
func (si *ServerIntegration) Start() error {
	listener, err := net.Listen("tcp", si.restServer.port)
	if err != nil {
		return fmt.Errorf("не удалось открыть порт %s: %w", si.restServer.port, err)
	}
	si.listener = listener

	si.httpServer = &http.Server{
		Handler:           si.restServer.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := si.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			si.restServer.logger.Error("❌ Ошибка REST API сервера: %v", err)
			si.errCh <- err
		}
		close(si.errCh)
	}()

	si.restServer.logger.Info("✅ REST API сервер запущен на %s", listener.Addr())
	return nil
}

// Addr возвращает фактический адрес сервера (полезно при порте :0)
func (si *ServerIntegration) Addr() string {
	if si.listener == nil {
		return ""
	}
	return si.listener.Addr().String()
}

// Errors возвращает канал с фатальной ошибкой сервера; закрывается после остановки
func (si *ServerIntegration) Errors() <-chan error {
	return si.errCh
}

// Stop останавливает сервер, дожидаясь завершения текущих запросов
func (si *ServerIntegration) Stop(ctx context.Context) error {
	if si.httpServer == nil {
		return nil
	}
	si.restServer.logger.Info("🛑 Остановка REST API сервера...")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := si.httpServer.Shutdown(ctx); err != nil {
		si.restServer.logger.Error("❌ Ошибка при остановке HTTP сервера: %v", err)
		return err
	}
	si.restServer.logger.Info("✅ REST API сервер остановлен")
	return nil
}

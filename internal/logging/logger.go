package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает имя уровня без учёта регистра
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования %q", s)
}

// Logger пишет в консоль и (опционально) в файл компонента.
// Пороги уровней для консоли и файла задаются отдельно.
type Logger struct {
	component       string
	consoleLogger   *zap.SugaredLogger
	fileLogger      *zap.SugaredLogger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.RWMutex
}

// Каталог для файлов логов
var logDir = "logs"

// Логгер по умолчанию пишет только в консоль, поэтому пакетные функции безопасны до инициализации
var (
	defaultLogger = NewConsoleLogger("default")
	defaultMu     sync.RWMutex
)

// newConsoleCore создаёт core для человекочитаемого вывода в stdout
func newConsoleCore() zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), zap.DebugLevel)
}

// NewConsoleLogger создаёт логгер компонента без файла
func NewConsoleLogger(component string) *Logger {
	return newLoggerWithCores(component, newConsoleCore(), nil)
}

// NewLogger создаёт логгер компонента с файлом logs/<component>_<время>.log
func NewLogger(component string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(file),
		zap.DebugLevel,
	)

	logger := newLoggerWithCores(component, newConsoleCore(), fileCore)
	logger.file = file
	return logger, nil
}

// newLoggerWithCores собирает логгер из готовых zap core; fileCore может быть nil
func newLoggerWithCores(component string, consoleCore, fileCore zapcore.Core) *Logger {
	l := &Logger{
		component:       component,
		minConsoleLevel: INFO,
		minFileLevel:    DEBUG,
	}
	if consoleCore != nil {
		l.consoleLogger = zap.New(consoleCore).Named(component).Sugar()
	}
	if fileCore != nil {
		l.fileLogger = zap.New(fileCore).Named(component).Sugar()
	}
	return l
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	return l.component
}

// SetLevels задаёт пороги для консоли и файла
func (l *Logger) SetLevels(consoleLevel, fileLevel LogLevel) {
	l.mu.Lock()
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
	l.mu.Unlock()
}

// Close сбрасывает буферы и закрывает файл
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLogger != nil {
		_ = l.fileLogger.Sync()
		l.fileLogger = nil
	}
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		write(l.consoleLogger, level, format, args...)
	}
	if l.fileLogger != nil && level >= l.minFileLevel {
		write(l.fileLogger, level, format, args...)
	}
}

// write переводит уровень в zap; у zap нет TRACE, он пишется как DEBUG с пометкой
func write(s *zap.SugaredLogger, level LogLevel, format string, args ...interface{}) {
	switch level {
	case TRACE:
		s.Debugf("[TRACE] "+format, args...)
	case DEBUG:
		s.Debugf(format, args...)
	case INFO:
		s.Infof(format, args...)
	case WARN:
		s.Warnf(format, args...)
	default:
		s.Errorf(format, args...)
	}
}

// InitDefaultLogger заменяет логгер по умолчанию файловым логгером компонента
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = logger
	defaultMu.Unlock()

	_ = old.Close()
	return nil
}

// CloseDefaultLogger закрывает файл логгера по умолчанию и возвращает консольный
func CloseDefaultLogger() {
	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = NewConsoleLogger("default")
	defaultMu.Unlock()

	_ = old.Close()
}

// SetDefaultLevels задаёт пороги логгера по умолчанию
func SetDefaultLevels(consoleLevel, fileLevel LogLevel) {
	Default().SetLevels(consoleLevel, fileLevel)
}

// Default возвращает логгер по умолчанию
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE
func Trace(format string, args ...interface{}) { Default().Trace(format, args...) }

// Debug логирует сообщение уровня DEBUG
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

// Info логирует сообщение уровня INFO
func Info(format string, args ...interface{}) { Default().Info(format, args...) }

// Warn логирует сообщение уровня WARN
func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

// Error логирует сообщение уровня ERROR
func Error(format string, args ...interface{}) { Default().Error(format, args...) }

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
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

// ParseLevel разбирает уровень из строки конфигурации
func ParseLevel(s string) (LogLevel, error) {
	switch s {
	case "trace", "TRACE":
		return TRACE, nil
	case "debug", "DEBUG":
		return DEBUG, nil
	case "", "info", "INFO":
		return INFO, nil
	case "warn", "WARN":
		return WARN, nil
	case "error", "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

// Logger представляет логгер одного компонента
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.Mutex
}

// Глобальный логгер по умолчанию (консоль, INFO)
var defaultLogger = &Logger{
	component:       "default",
	consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
	minConsoleLevel: INFO,
	minFileLevel:    TRACE,
}

// NewLogger создаёт логгер компонента. Если задан каталог логов
// (SetLogDir), сообщения дополнительно пишутся в файл.
func NewLogger(component string) (*Logger, error) {
	l := &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}

	dir := logDir()
	if dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return l, nil
}

// NewWriterLogger создаёт логгер, пишущий в произвольный writer (используется в тестах)
func NewWriterLogger(component string, w io.Writer, level LogLevel) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", 0),
		minConsoleLevel: level,
		minFileLevel:    level,
	}
}

// Close закрывает файл логов компонента
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Enabled сообщает, будет ли записано сообщение указанного уровня
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.minConsoleLevel || (l.fileLogger != nil && level >= l.minFileLevel)
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logf(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logf(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logf(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

// InitDefaultLogger инициализирует логгер по умолчанию с записью в logs/
func InitDefaultLogger(component string) error {
	SetLogDir("logs")

	logger, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// SetDefaultLevel задаёт минимальный уровень вывода в консоль для логгера по умолчанию
func SetDefaultLevel(level LogLevel) {
	defaultLogger.minConsoleLevel = level
}

// CloseDefaultLogger закрывает логгер по умолчанию
func CloseDefaultLogger() {
	if defaultLogger != nil {
		defaultLogger.Close()
	}
}

// Trace логирует сообщение уровня TRACE в логгер по умолчанию
func Trace(format string, args ...interface{}) { defaultLogger.logf(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG в логгер по умолчанию
func Debug(format string, args ...interface{}) { defaultLogger.logf(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO в логгер по умолчанию
func Info(format string, args ...interface{}) { defaultLogger.logf(INFO, format, args...) }

// Warn логирует сообщение уровня WARN в логгер по умолчанию
func Warn(format string, args ...interface{}) { defaultLogger.logf(WARN, format, args...) }

// Error логирует сообщение уровня ERROR в логгер по умолчанию
func Error(format string, args ...interface{}) { defaultLogger.logf(ERROR, format, args...) }

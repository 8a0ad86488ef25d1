package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
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

// LogDir - каталог для файлов логов
var LogDir = "logs"

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

// ParseLevel разбирает уровень из строки конфигурации ("debug", "INFO", ...)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger пишет сообщения в консоль и (опционально) в файл.
// В консоль попадают сообщения от minConsoleLevel, в файл - от minFileLevel.
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	mu              sync.RWMutex
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

// NewLogger создаёт логгер компонента с файлом logs/<component>_<время>.log
func NewLogger(component string) (*Logger, error) {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", LogDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(LogDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	logger := NewLoggerWithWriters(component, os.Stdout, file)
	logger.file = file
	return logger, nil
}

// NewLoggerWithWriters создаёт логгер поверх произвольных writer'ов.
// fileOut == nil отключает файловый вывод.
func NewLoggerWithWriters(component string, consoleOut, fileOut io.Writer) *Logger {
	l := &Logger{
		component:       component,
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}
	if consoleOut != nil {
		l.consoleLogger = log.New(consoleOut, "", log.LstdFlags)
	}
	if fileOut != nil {
		l.fileLogger = log.New(fileOut, "", log.LstdFlags|log.Lmicroseconds)
	}
	return l
}

// SetLevels устанавливает минимальные уровни для консоли и файла
func (l *Logger) SetLevels(console, file LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minConsoleLevel = console
	l.minFileLevel = file
}

// Close закрывает файл логов, если он открыт
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

func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	toFile := l.fileLogger != nil && level >= l.minFileLevel
	toConsole := l.consoleLogger != nil && level >= l.minConsoleLevel
	if !toFile && !toConsole {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))
	if toFile {
		l.fileLogger.Println(message)
	}
	if toConsole {
		l.consoleLogger.Println(message)
	}
}

// Логгер по умолчанию: только консоль, пока не вызван InitDefaultLogger
var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLoggerWithWriters("app", os.Stdout, nil)
)

// InitDefaultLogger заменяет логгер по умолчанию файловым логгером компонента
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}
	SetDefaultLogger(logger)
	return nil
}

// SetDefaultLogger подменяет логгер по умолчанию (используется в тестах)
func SetDefaultLogger(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLogger = l
}

// CloseDefaultLogger закрывает файл логгера по умолчанию
func CloseDefaultLogger() {
	if err := Default().Close(); err != nil {
		log.Printf("ошибка закрытия логгера: %v", err)
	}
}

// Default возвращает текущий логгер по умолчанию
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

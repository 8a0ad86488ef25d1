package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов, для которых заводятся отдельные логгеры
const (
	ComponentWorld   = "world"
	ComponentStorage = "storage"
)

// LoggerManager раздаёт логгеры компонентов с общими уровнями.
// Файлы создаются только после EnableFiles; до этого логгеры пишут в консоль.
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	files   bool
	console LogLevel
	file    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

func newLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers: make(map[string]*Logger),
		console: INFO,
		file:    TRACE,
	}
}

// Configure задаёт уровни для всех логгеров менеджера, включая уже выданные.
// files включает запись в LogDir для логгеров, созданных после вызова.
func (lm *LoggerManager) Configure(console, file LogLevel, files bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.console, lm.file, lm.files = console, file, files
	for _, l := range lm.loggers {
		l.SetLevels(console, file)
	}
}

// Component возвращает логгер компонента, создавая его при первом обращении.
// Если файл логов создать не удалось, логгер пишет только в консоль.
func (lm *LoggerManager) Component(name string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[name]; ok {
		return l
	}

	var l *Logger
	if lm.files {
		fl, err := NewLogger(name)
		if err != nil {
			Default().Warn("Логгер %s без файла: %v", name, err)
		} else {
			l = fl
		}
	}
	if l == nil {
		l = NewLoggerWithWriters(name, os.Stdout, nil)
	}
	l.SetLevels(lm.console, lm.file)

	lm.loggers[name] = l
	return l
}

// Components возвращает имена созданных логгеров в алфавитном порядке
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll закрывает файлы всех логгеров и забывает их.
// Возвращает первую ошибку закрытия.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close logger %s: %w", name, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return firstErr
}

// WorldLogger - логгер генерации области
func WorldLogger() *Logger {
	return GetLoggerManager().Component(ComponentWorld)
}

// StorageLogger - логгер хранилища чанков
func StorageLogger() *Logger {
	return GetLoggerManager().Component(ComponentStorage)
}

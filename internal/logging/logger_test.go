package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelsPerSink(t *testing.T) {
	var console, file bytes.Buffer
	l := NewLoggerWithWriters("test", &console, &file)

	l.Debug("отладка %d", 1)
	l.Info("инфо %s", "ok")

	assert.NotContains(t, console.String(), "отладка", "DEBUG не должен попадать в консоль")
	assert.Contains(t, console.String(), "[INFO] [test] инфо ok")
	assert.Contains(t, file.String(), "[DEBUG] [test] отладка 1")
	assert.Contains(t, file.String(), "инфо ok")
}

func TestLogger_SetLevels(t *testing.T) {
	var console bytes.Buffer
	l := NewLoggerWithWriters("test", &console, nil)
	l.SetLevels(ERROR, ERROR)

	l.Warn("предупреждение")
	l.Error("ошибка")

	out := console.String()
	assert.NotContains(t, out, "предупреждение")
	assert.Equal(t, 1, strings.Count(out, "[ERROR]"))
}

func TestDefaultLogger_Swap(t *testing.T) {
	prev := Default()
	defer SetDefaultLogger(prev)

	var buf bytes.Buffer
	SetDefaultLogger(NewLoggerWithWriters("swap", &buf, nil))
	Info("сообщение")
	Trace("не видно")

	assert.Contains(t, buf.String(), "[swap] сообщение")
	assert.NotContains(t, buf.String(), "не видно")
}

func TestNewLogger_WritesFile(t *testing.T) {
	prevDir := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prevDir }()

	l, err := NewLogger("file")
	require.NoError(t, err)
	l.Trace("в файл")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "повторное закрытие безопасно")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerManager_ConsoleOnlyByDefault(t *testing.T) {
	prevDir := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prevDir }()

	lm := newLoggerManager()
	a := lm.Component(ComponentWorld)
	b := lm.Component(ComponentWorld)
	assert.Same(t, a, b)
	assert.Nil(t, a.file, "без EnableFiles файл не создаётся")

	entries, err := os.ReadDir(LogDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, lm.CloseAll())
}

func TestLoggerManager_FilesAndClose(t *testing.T) {
	prevDir := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prevDir }()

	lm := newLoggerManager()
	lm.Configure(WARN, DEBUG, true)

	storage := lm.Component(ComponentStorage)
	require.NotNil(t, storage.file)
	assert.Equal(t, WARN, storage.minConsoleLevel)
	assert.Equal(t, DEBUG, storage.minFileLevel)
	assert.Equal(t, []string{ComponentStorage}, lm.Components())

	lm.Configure(ERROR, ERROR, true)
	assert.Equal(t, ERROR, storage.minConsoleLevel, "уровни применяются к выданным логгерам")

	entries, err := os.ReadDir(LogDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, lm.CloseAll())
	assert.Nil(t, storage.file)
	assert.Empty(t, lm.Components())
	assert.NotSame(t, storage, lm.Component(ComponentStorage), "после CloseAll логгер создаётся заново")
	require.NoError(t, lm.CloseAll())
}

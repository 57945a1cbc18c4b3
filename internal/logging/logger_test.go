package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("world", &buf, INFO)

	l.Debug("не должно попасть в вывод")
	l.Info("генерация завершена: %d деревьев", 12)
	l.Error("ошибка: %v", "boom")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[INFO] [world] генерация завершена: 12 деревьев")
	assert.Contains(t, out, "[ERROR] [world] ошибка: boom")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerManager_ComponentLoggers(t *testing.T) {
	lm := GetLoggerManager()

	a := GetComponentLogger("test-component")
	b := GetComponentLogger("test-component")
	assert.Same(t, a, b, "логгер компонента должен кэшироваться")

	require.NoError(t, lm.SetLogLevel("test-component", ERROR, ERROR))
	assert.False(t, a.Enabled(INFO))
	assert.Error(t, lm.SetLogLevel("missing-component", INFO, INFO))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("ничего") })
}

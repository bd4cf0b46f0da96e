package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/no/such/dir/at/all/app.log"}})
	assert.Error(t, err)
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	l.Info("catalog loaded",
		String("source", "file"),
		Int("phones", 42),
		Float64("elapsed_s", 0.12),
		Bool("cached", true),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "catalog loaded", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "file", fields["source"])
	assert.EqualValues(t, 42, fields["phones"])
	assert.Equal(t, true, fields["cached"])
}

func TestLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("catalog").With(String("component", "store"))

	l.Warn("cache invalidated")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "catalog", entry.LoggerName)
	assert.Equal(t, "store", entry.ContextMap()["component"])
}

func TestErrField(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)

	f = Err(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), f.Value)
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	// nil is ignored
	SetDefault(nil)
	assert.NotNil(t, Default())

	nop := NewNopLogger()
	SetDefault(nop)
	assert.Equal(t, nop, Default())
}

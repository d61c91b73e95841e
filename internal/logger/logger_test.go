package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitIsUsable(t *testing.T) {
	require.NotNil(t, Get())
	Get().Info("logging before Init must not panic")
}

func TestInit_SetsLevel(t *testing.T) {
	require.NoError(t, Init(false, WarnLevel))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Init(true, "unknown"))
	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
}

package logger

import (
	"testing"

	"wallet/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	dev, err := New(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneclass/platform/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		logger, err := NewLogger(config.ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()

		assert.True(t, logger.Core().Enabled(0)) // InfoLevel
	})

	t.Run("text console logger", func(t *testing.T) {
		logger, err := NewLogger(config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "text",
		})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()

		assert.True(t, logger.Core().Enabled(-1)) // DebugLevel
	})

	t.Run("invalid level", func(t *testing.T) {
		logger, err := NewLogger(config.ObservabilityConfig{
			LogLevel:  "shouty",
			LogFormat: "json",
		})
		assert.Error(t, err)
		assert.Nil(t, logger)
	})
}

func TestSetupTracing(t *testing.T) {
	t.Run("disabled tracing is a no-op", func(t *testing.T) {
		shutdown, err := SetupTracing(context.Background(), config.ObservabilityConfig{
			TracingEnabled: false,
		}, "oneclass-api")
		require.NoError(t, err)
		require.NotNil(t, shutdown)

		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("enabled without endpoint is a no-op", func(t *testing.T) {
		shutdown, err := SetupTracing(context.Background(), config.ObservabilityConfig{
			TracingEnabled:  true,
			TracingEndpoint: "",
		}, "oneclass-api")
		require.NoError(t, err)
		require.NotNil(t, shutdown)

		assert.NoError(t, shutdown(context.Background()))
	})
}

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(level)

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	t.Run("Level is honored", func(t *testing.T) {
		logger, err := New("warn")

		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Unknown level", func(t *testing.T) {
		_, err := New("loud")

		assert.Error(t, err)
	})
}

package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		wantErr bool
	}{
		{"DebugConsole", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, false},
		{"InfoJSON", Config{Level: "info", Format: "json"}, zapcore.InfoLevel, false},
		{"Warn", Config{Level: "warn"}, zapcore.WarnLevel, false},
		{"Invalid", Config{Level: "loud"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.enabled-1))
		})
	}
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-123")
		WithRayID(base, c).Info("handled")
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ray-123", logs.All()[0].ContextMap()["ray_id"])
}

func TestWithRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithRun(base, "run-1").Info("tagged")
	WithRun(base, "").Info("untagged")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "run-1", logs.All()[0].ContextMap()["run_id"])
	assert.NotContains(t, logs.All()[1].ContextMap(), "run_id")
}

package loader

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(app fiber.Router) error {
	if f.err != nil {
		return f.err
	}
	f.loaded = true
	app.Get("/"+f.name, func(c *fiber.Ctx) error { return c.SendString(f.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()
	m := NewManager(nil)
	on := &stubFeature{name: "documents", enabled: true}
	off := &stubFeature{name: "hidden", enabled: false}
	m.Register(on)
	m.Register(off)

	require.NoError(t, m.LoadAll(app))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, m.Features(), 2)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestManager_LoadAllFailure(t *testing.T) {
	m := NewManager(nil)
	m.Register(&stubFeature{name: "broken", enabled: true, err: errors.New("boom")})

	err := m.LoadAll(fiber.New())
	assert.EqualError(t, err, "load feature broken: boom")
}

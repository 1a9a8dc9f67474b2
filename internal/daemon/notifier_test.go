package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func TestInternalNotifier_RateLimit(t *testing.T) {
	n := NewInternalNotifier(nil)
	now := time.Unix(1000, 0)
	n.now = func() time.Time { return now }

	var shown []model.Config
	n.SetShowHandler(func(cfg model.Config) (string, error) {
		shown = append(shown, cfg)
		return cfg.ID, nil
	})

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	require.Len(t, shown, 1)
	assert.Equal(t, "snackbard-config-reload", shown[0].ID)
	assert.Equal(t, model.TypeSuccess, shown[0].Type)
	require.NotNil(t, shown[0].Timeout)
	assert.Equal(t, 5*time.Second, *shown[0].Timeout)

	// Other keys are independent
	n.NotifyConfigError(errors.New("bad position"))
	require.Len(t, shown, 2)
	assert.Equal(t, model.TypeWarn, shown[1].Type)
	assert.Contains(t, shown[1].Message, "bad position")

	now = now.Add(6 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, shown, 3)

	n.SetMinInterval(time.Minute)
	now = now.Add(10 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, shown, 3)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	n := NewInternalNotifier(nil)

	// No handler is not an error
	n.NotifyStartup("1.0.0")

	calls := 0
	n.SetShowHandler(func(cfg model.Config) (string, error) {
		calls++
		return "", errors.New("not mounted")
	})
	n.SetEnabled(false)
	n.NotifyThemeError(errors.New("x"))
	assert.Equal(t, 0, calls)

	n.SetEnabled(true)
	n.NotifyPositionChanged(model.DefaultPosition())
	assert.Equal(t, 1, calls)
}

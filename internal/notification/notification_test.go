package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/docktail/internal/config"
)

func TestNewNotifier_Disabled(t *testing.T) {
	cfg := &config.Config{}

	n, err := NewNotifier(cfg)
	require.NoError(t, err)
	assert.False(t, n.IsEnabled())
}

func TestNewNotifier_EnabledWithoutURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notification.Enabled = true

	n, err := NewNotifier(cfg)
	assert.Error(t, err)
	assert.False(t, n.IsEnabled())
}

func TestNewNotifier_Enabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notification.Enabled = true
	cfg.Notification.ShoutrrURL = "  slack://token@channel  "

	n, err := NewNotifier(cfg)
	require.NoError(t, err)
	assert.True(t, n.IsEnabled())
	assert.Equal(t, "slack://token@channel", n.shoutrrrURL, "URL must be trimmed")
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := &Notifier{enabled: false}

	// Must not panic or attempt any delivery.
	n.ContainerStarted("worker-1")
	n.ContainerStopped("worker-1")
}

// Package notification handles sending lifecycle notifications to external services.
package notification

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/zorak1103/docktail/internal/config"
)

// Notifier pushes container lifecycle announcements via Shoutrrr. Delivery
// failures are reported on stderr and never affect the tail loop.
type Notifier struct {
	enabled     bool
	shoutrrrURL string
}

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.Notification.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.Notification.ShoutrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:     true,
		shoutrrrURL: url,
	}, nil
}

// ContainerStarted announces that a tracked container began running.
func (n *Notifier) ContainerStarted(name string) {
	n.send(fmt.Sprintf("🐳 docktail: container started\n📦 %s\n📅 %s", name, timestamp()))
}

// ContainerStopped announces that a tracked container stopped.
func (n *Notifier) ContainerStopped(name string) {
	n.send(fmt.Sprintf("🐳 docktail: container stopped\n📦 %s\n📅 %s", name, timestamp()))
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

func (n *Notifier) send(message string) {
	if !n.enabled {
		return
	}

	if err := shoutrrr.Send(n.shoutrrrURL, message); err != nil {
		// Extract service type from URL (e.g., "slack://..." -> "slack")
		serviceType := "unknown"
		if idx := strings.Index(n.shoutrrrURL, "://"); idx > 0 {
			serviceType = n.shoutrrrURL[:idx]
		}
		fmt.Fprintf(os.Stderr, "docktail: notification via %s failed: %v\n", serviceType, err)
	}
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

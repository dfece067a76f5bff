// Package tailer implements the live log multiplexing engine: container
// discovery, per-container follow streams, color assignment, and the merged
// terminal output.
package tailer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/zorak1103/docktail/internal/docker"
)

// EventKind discriminates lifecycle events.
type EventKind int

const (
	// Started indicates a matching container appeared since the last poll.
	Started EventKind = iota
	// Stopped indicates a previously matched container is gone.
	Stopped
)

// Event is a container lifecycle transition detected by the Tracker.
type Event struct {
	Kind      EventKind
	Container docker.Container
}

// Line is one log line attributed to the container that produced it. Lines
// from one container arrive in stream order; lines from different
// containers interleave in arrival order at the sink.
type Line struct {
	ContainerID string
	Name        string
	Color       *color.Color
	Text        string
}

// Options is the immutable matching and streaming configuration, fixed at
// startup.
type Options struct {
	Pattern    string
	Exact      bool          // full name equality instead of substring containment
	Tail       string        // "all" or a decimal line count
	Since      int           // seconds of history, 0 = unbounded
	Refresh    time.Duration // rescan interval
	IncludeTTY bool          // follow interactive containers too
}

// Validate checks the option values that arrive from user input.
func (o Options) Validate() error {
	if o.Pattern == "" {
		return errors.New("pattern must not be empty")
	}
	if o.Tail != "all" {
		n, err := strconv.Atoi(o.Tail)
		if err != nil || n < 0 {
			return fmt.Errorf(`tail must be a non-negative integer or "all", got %q`, o.Tail)
		}
	}
	if o.Since < 0 {
		return fmt.Errorf("since must be non-negative, got %d", o.Since)
	}
	if o.Refresh <= 0 {
		return fmt.Errorf("refresh must be positive, got %s", o.Refresh)
	}
	return nil
}

// followOptions translates the tail/since settings for the runtime client.
func (o Options) followOptions() docker.FollowOptions {
	return docker.FollowOptions{Tail: o.Tail, Since: o.Since}
}

package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zorak1103/docktail/internal/docker"
)

// Lister is the container discovery surface the Tracker polls.
type Lister interface {
	ListRunning(ctx context.Context) ([]docker.Container, error)
	Resolve(ctx context.Context, name string) (docker.Container, error)
}

// Tracker polls Docker for containers matching the configured pattern and
// turns changes in the matched set into typed lifecycle events. Containers
// are identified by ID, so a container restarted under the same name
// produces a Stopped for the old instance and a Started for the new one.
type Tracker struct {
	lister Lister
	opts   Options
	warn   io.Writer

	known  map[string]docker.Container // matched set from the previous poll
	warned bool                        // listing failure already reported
}

// NewTracker creates a tracker for the given match configuration. Poll
// failures are reported on warn once per outage.
func NewTracker(lister Lister, opts Options, warn io.Writer) *Tracker {
	return &Tracker{
		lister: lister,
		opts:   opts,
		warn:   warn,
		known:  make(map[string]docker.Container),
	}
}

// Run polls until ctx is cancelled, sending Started and Stopped events on
// events. The first poll happens immediately so containers already running
// at startup are picked up without waiting a full interval.
func (t *Tracker) Run(ctx context.Context, events chan<- Event) {
	ticker := time.NewTicker(t.opts.Refresh)
	defer ticker.Stop()

	if !t.poll(ctx, events) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.poll(ctx, events) {
				return
			}
		}
	}
}

// poll diffs the current matched set against the previous one. A listing
// failure is treated as "no containers found": the daemon going away quiets
// the stream instead of crashing the loop, and the next interval retries.
func (t *Tracker) poll(ctx context.Context, events chan<- Event) bool {
	matched, err := t.matchedContainers(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if !t.warned {
			fmt.Fprintf(t.warn, "docktail: container discovery failed: %v\n", err)
			t.warned = true
		}
		matched = nil
	} else {
		t.warned = false
	}

	current := make(map[string]docker.Container, len(matched))
	for _, ctr := range matched {
		current[ctr.ID] = ctr
	}

	// Stops go out before starts. A container restarted under the same name
	// then reads as stop+start downstream, and its color is released before
	// the new instance acquires one.
	for id, ctr := range t.known {
		if _, ok := current[id]; !ok {
			if !send(ctx, events, Event{Kind: Stopped, Container: ctr}) {
				return false
			}
		}
	}
	for _, ctr := range matched {
		if _, ok := t.known[ctr.ID]; !ok {
			if !send(ctx, events, Event{Kind: Started, Container: ctr}) {
				return false
			}
		}
	}

	t.known = current
	return true
}

// matchedContainers returns the running containers the pattern selects.
// Exact mode resolves the single named container; a missing container is a
// normal empty result, not an error.
func (t *Tracker) matchedContainers(ctx context.Context) ([]docker.Container, error) {
	if t.opts.Exact {
		ctr, err := t.lister.Resolve(ctx, t.opts.Pattern)
		if errors.Is(err, docker.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if ctr.TTY && !t.opts.IncludeTTY {
			return nil, nil
		}
		return []docker.Container{ctr}, nil
	}

	containers, err := t.lister.ListRunning(ctx)
	if err != nil {
		return nil, err
	}

	var matched []docker.Container
	for _, ctr := range containers {
		if ctr.TTY && !t.opts.IncludeTTY {
			continue
		}
		if strings.Contains(ctr.Name, t.opts.Pattern) {
			matched = append(matched, ctr)
		}
	}
	return matched, nil
}

func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

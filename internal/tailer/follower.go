package tailer

import (
	"context"
	"io"

	"github.com/fatih/color"

	"github.com/zorak1103/docktail/internal/docker"
)

// Streamer opens follow-mode log streams.
type Streamer interface {
	FollowLogs(ctx context.Context, ctr docker.Container, opts docker.FollowOptions) (io.ReadCloser, error)
}

// follower tails one container's log stream in its own goroutine until the
// stream ends or its context is cancelled. It only pushes data outward; all
// tracking state lives in the multiplexer.
type follower struct {
	ctr    docker.Container
	color  *color.Color
	cancel context.CancelFunc
	done   chan struct{}
}

// startFollower spawns the goroutine streaming ctr's logs into lines. When
// the stream ends on its own the container ID is reported on exits; a
// cancelled follower stays silent. done closes once the goroutine is gone.
func startFollower(ctx context.Context, streamer Streamer, ctr docker.Container, c *color.Color, opts docker.FollowOptions, lines chan<- Line, exits chan<- string) *follower {
	ctx, cancel := context.WithCancel(ctx)
	f := &follower{
		ctr:    ctr,
		color:  c,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.run(ctx, streamer, opts, lines, exits)
	return f
}

func (f *follower) run(ctx context.Context, streamer Streamer, opts docker.FollowOptions, lines chan<- Line, exits chan<- string) {
	defer close(f.done)

	reader, err := streamer.FollowLogs(ctx, f.ctr, opts)
	if err != nil {
		// The container can vanish between discovery and attach; that is an
		// ordinary race, not something to report.
		f.signalExit(ctx, exits)
		return
	}
	defer reader.Close() //nolint:errcheck // stream already consumed

	// Cancellation must unblock a pending read even when the stream itself
	// ignores ctx. Every follower is cancelled by the multiplexer sooner or
	// later, so this goroutine cannot outlive the loop.
	go func() {
		<-ctx.Done()
		_ = reader.Close()
	}()

	// Stream errors end this follower only, never the program.
	_ = docker.Lines(reader, f.ctr.TTY, func(text string) bool {
		if text == "" {
			return true
		}
		select {
		case lines <- Line{ContainerID: f.ctr.ID, Name: f.ctr.Name, Color: f.color, Text: text}:
			return true
		case <-ctx.Done():
			return false
		}
	})

	f.signalExit(ctx, exits)
}

// signalExit reports a stream that ended on its own. A cancelled follower
// stays silent; the multiplexer is already handling its stop.
func (f *follower) signalExit(ctx context.Context, exits chan<- string) {
	if ctx.Err() != nil {
		return
	}
	select {
	case exits <- f.ctr.ID:
	case <-ctx.Done():
	}
}

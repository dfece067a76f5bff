package tailer

import (
	"context"
	"io"
	"os"

	"github.com/zorak1103/docktail/internal/docker"
)

// Runtime is the full Docker surface the tailer consumes.
type Runtime interface {
	Lister
	Streamer
}

// Notifier receives lifecycle announcements alongside the terminal banners.
type Notifier interface {
	ContainerStarted(name string)
	ContainerStopped(name string)
}

const (
	lineBuffer  = 256
	eventBuffer = 16
)

// Tailer multiplexes the log streams of every container matching the
// configured pattern into a single rendered output stream. The tracked set
// and the palette are mutated only by Run's control loop; followers and the
// tracker communicate through channels.
type Tailer struct {
	runtime  Runtime
	opts     Options
	renderer *Renderer
	notifier Notifier  // nil when notifications are disabled
	warn     io.Writer // discovery failure notices, stderr in production

	palette *Palette
	tracked map[string]*follower // container ID -> active follower
	lines   chan Line
	exits   chan string
}

// New assembles a Tailer. notifier may be nil.
func New(runtime Runtime, opts Options, renderer *Renderer, notifier Notifier) *Tailer {
	return &Tailer{
		runtime:  runtime,
		opts:     opts,
		renderer: renderer,
		notifier: notifier,
		warn:     os.Stderr,
		palette:  NewPalette(),
		tracked:  make(map[string]*follower),
		lines:    make(chan Line, lineBuffer),
		exits:    make(chan string, eventBuffer),
	}
}

// Run drives the main loop until ctx is cancelled, which is the only way
// the loop terminates. A clean shutdown cancels every follower, waits for
// them, and returns nil.
func (t *Tailer) Run(ctx context.Context) error {
	events := make(chan Event, eventBuffer)
	tracker := NewTracker(t.runtime, t.opts, t.warn)
	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		tracker.Run(ctx, events)
	}()

	for {
		select {
		case <-ctx.Done():
			t.shutdown()
			<-trackerDone
			return nil
		case ev := <-events:
			switch ev.Kind {
			case Started:
				t.start(ctx, ev.Container)
			case Stopped:
				t.stop(ev.Container.ID)
			}
		case l := <-t.lines:
			t.renderer.Line(l)
		case id := <-t.exits:
			t.stop(id)
		}
	}
}

// start attaches a follower to a newly matched container and announces it.
// A duplicate Started event for a container already being followed is a
// no-op, so double detection cannot spawn a second follower.
func (t *Tailer) start(ctx context.Context, ctr docker.Container) {
	if _, ok := t.tracked[ctr.ID]; ok {
		return
	}

	c := t.palette.Acquire(ctr.Name)
	t.tracked[ctr.ID] = startFollower(ctx, t.runtime, ctr, c, t.opts.followOptions(), t.lines, t.exits)
	t.renderer.Banner("+", ctr.Name, c)
	if t.notifier != nil {
		go t.notifier.ContainerStarted(ctr.Name)
	}
}

// stop tears down a follower, reclaims its color, and announces the stop.
// The banner goes out only after the follower has finished and its queued
// lines are flushed, so a container's final output precedes its banner.
// Unknown IDs are a no-op, which makes tracker Stopped events and follower
// EOF reports safely redundant.
func (t *Tailer) stop(id string) {
	f, ok := t.tracked[id]
	if !ok {
		return
	}
	delete(t.tracked, id)

	f.cancel()
	<-f.done
	t.flushPending()

	t.palette.Release(f.ctr.Name)
	t.renderer.Banner("-", f.ctr.Name, f.color)
	if t.notifier != nil {
		go t.notifier.ContainerStopped(f.ctr.Name)
	}
}

// shutdown cancels all followers and waits for each; no stop banners are
// printed on interrupt.
func (t *Tailer) shutdown() {
	for id, f := range t.tracked {
		f.cancel()
		<-f.done
		t.palette.Release(f.ctr.Name)
		delete(t.tracked, id)
	}
	t.flushPending()
}

// flushPending forwards lines already sitting in the sink without blocking.
func (t *Tailer) flushPending() {
	for {
		select {
		case l := <-t.lines:
			t.renderer.Line(l)
		default:
			return
		}
	}
}

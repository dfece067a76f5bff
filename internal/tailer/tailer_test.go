package tailer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/docktail/internal/docker"
)

// syncBuffer lets the test read renderer output while the loop writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingNotifier struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (n *recordingNotifier) ContainerStarted(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, name)
}

func (n *recordingNotifier) ContainerStopped(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = append(n.stopped, name)
}

func newTestTailer(rt *fakeRuntime, opts Options) (*Tailer, *syncBuffer) {
	color.NoColor = true
	out := &syncBuffer{}
	tl := New(rt, opts, NewRenderer(out), nil)
	tl.warn = io.Discard
	return tl, out
}

func TestTailer_StartIsIdempotent(t *testing.T) {
	ctr := docker.Container{ID: "a1", Name: "worker-1", TTY: true}
	pr, pw := io.Pipe()
	defer pw.Close() //nolint:errcheck
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{"a1": pr}}

	opts := substringOpts("worker")
	opts.IncludeTTY = true
	tl, out := newTestTailer(rt, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tl.start(ctx, ctr)
	tl.start(ctx, ctr)

	assert.Len(t, tl.tracked, 1, "duplicate start must not spawn a second follower")
	assert.Equal(t, "+ worker-1\n", out.String(), "duplicate start must not repeat the banner")

	tl.shutdown()
}

func TestTailer_StopUnknownIsNoop(t *testing.T) {
	rt := &fakeRuntime{}
	tl, out := newTestTailer(rt, substringOpts("worker"))

	tl.stop("nope")

	assert.Empty(t, tl.tracked)
	assert.Empty(t, out.String())
}

func TestTailer_StopFlushesLinesBeforeBanner(t *testing.T) {
	ctr := docker.Container{ID: "a1", Name: "worker-1", TTY: true}
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{
		"a1": io.NopCloser(strings.NewReader("last words\n")),
	}}

	opts := substringOpts("worker")
	opts.IncludeTTY = true
	tl, out := newTestTailer(rt, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tl.start(ctx, ctr)

	// Let the follower drain its backlog into the sink before stopping.
	require.Eventually(t, func() bool { return len(tl.lines) > 0 }, time.Second, time.Millisecond)
	tl.stop("a1")

	output := out.String()
	lineIdx := strings.Index(output, "[worker-1] last words")
	bannerIdx := strings.Index(output, "- worker-1")
	require.GreaterOrEqual(t, lineIdx, 0)
	require.GreaterOrEqual(t, bannerIdx, 0)
	assert.Less(t, lineIdx, bannerIdx, "final lines must precede the stop banner")
}

func TestTailer_StartStopCyclesLeakNothing(t *testing.T) {
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{}}
	opts := substringOpts("worker")
	opts.IncludeTTY = true
	tl, _ := newTestTailer(rt, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for i := 0; i < 10; i++ {
		ctr := docker.Container{ID: "a1", Name: "worker-1", TTY: true}
		pr, pw := io.Pipe()
		rt.mu.Lock()
		rt.streams["a1"] = pr
		rt.mu.Unlock()

		tl.start(ctx, ctr)
		tl.stop("a1")
		_ = pw.Close()
	}

	assert.Empty(t, tl.tracked, "no follower may outlive its stop")
	assert.Empty(t, tl.palette.held, "every acquired color must be released")
}

// A restart arrives as stop then start for the same name. The old instance's
// color must be fully released and re-claimed, never left as a free slot the
// new instance is still rendering in.
func TestTailer_RestartReassignsColorCleanly(t *testing.T) {
	oldPr, oldPw := io.Pipe()
	newPr, newPw := io.Pipe()
	defer newPw.Close() //nolint:errcheck
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{"a1": oldPr, "z9": newPr}}

	opts := substringOpts("worker")
	opts.IncludeTTY = true
	tl, out := newTestTailer(rt, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tl.start(ctx, docker.Container{ID: "a1", Name: "worker-1", TTY: true})
	tl.stop("a1")
	_ = oldPw.Close()
	tl.start(ctx, docker.Container{ID: "z9", Name: "worker-1", TTY: true})

	output := out.String()
	stopIdx := strings.Index(output, "- worker-1")
	restartIdx := strings.LastIndex(output, "+ worker-1")
	require.GreaterOrEqual(t, stopIdx, 0)
	assert.Less(t, stopIdx, restartIdx, "restart reads as stop then start")

	require.Contains(t, tl.tracked, "z9")
	require.Contains(t, tl.palette.held, "worker-1")
	slot := tl.palette.held["worker-1"].slot
	assert.Equal(t, 1, tl.palette.used[slot], "the new instance's slot must be marked held")

	tl.shutdown()
	assert.Empty(t, tl.palette.held)
	assert.Zero(t, tl.palette.used[slot])
}

func TestTailer_Notifications(t *testing.T) {
	ctr := docker.Container{ID: "a1", Name: "worker-1", TTY: true}
	pr, pw := io.Pipe()
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{"a1": pr}}

	opts := substringOpts("worker")
	opts.IncludeTTY = true
	tl, _ := newTestTailer(rt, opts)
	n := &recordingNotifier{}
	tl.notifier = n

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tl.start(ctx, ctr)
	tl.stop("a1")
	_ = pw.Close()

	assert.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.started) == 1 && len(n.stopped) == 1
	}, time.Second, time.Millisecond)
}

// End-to-end over the real loop: two workers running at startup, one log
// line each, then one stops externally.
func TestTailer_RunScenario(t *testing.T) {
	w1r, w1w := io.Pipe()
	w2r, w2w := io.Pipe()
	defer w2w.Close() //nolint:errcheck
	rt := &fakeRuntime{streams: map[string]io.ReadCloser{"a1": w1r, "b2": w2r}}
	rt.setContainers(
		docker.Container{ID: "a1", Name: "worker-1", TTY: true},
		docker.Container{ID: "b2", Name: "worker-2", TTY: true},
	)

	opts := substringOpts("worker")
	opts.IncludeTTY = true
	opts.Refresh = 5 * time.Millisecond
	tl, out := newTestTailer(rt, opts)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- tl.Run(ctx) }()

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "+ worker-1") && strings.Contains(s, "+ worker-2")
	}, time.Second, time.Millisecond, "both running containers get start banners")

	go io.WriteString(w1w, "hello from one\n") //nolint:errcheck
	go io.WriteString(w2w, "hello from two\n") //nolint:errcheck
	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "[worker-1] hello from one") && strings.Contains(s, "[worker-2] hello from two")
	}, time.Second, time.Millisecond)

	// worker-1 stops externally: within a refresh interval the tracker
	// notices and the stop banner appears.
	rt.setContainers(docker.Container{ID: "b2", Name: "worker-2", TTY: true})
	_ = w1w.Close()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "- worker-1")
	}, time.Second, time.Millisecond)

	before := out.String()
	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err, "interrupt is a clean shutdown")
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancellation")
	}
	assert.NotContains(t, before, "- worker-2", "no stop banner for a container that kept running")
}

// Package docker provides a client for interacting with the Docker API.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("docker connection failed")
	ErrNotFound         = errors.New("container not found")
)

// Client defines the interface for the Docker operations the tailer consumes.
// All methods accept context.Context for cancellation and timeout support.
type Client interface {
	// Ping verifies the Docker daemon is accessible. Returns error if connection fails.
	Ping(ctx context.Context) error
	// Close closes the Docker client connection and releases resources.
	Close() error

	// ListRunning lists all running containers with name, ID, state, and
	// TTY flag resolved. Container names are normalized without the leading
	// slash the API reports.
	ListRunning(ctx context.Context) ([]Container, error)

	// Resolve looks up a running container by its exact name. Returns a
	// wrapped ErrNotFound when no running container carries that name.
	Resolve(ctx context.Context, name string) (Container, error)

	// FollowLogs opens a follow-mode log stream for the container,
	// replaying history per opts before streaming new output. For non-TTY
	// containers the returned stream carries Docker's stdout/stderr frame
	// headers; consume it through Lines to strip them. The stream is tied
	// to ctx and terminates when the container stops or ctx is cancelled.
	FollowLogs(ctx context.Context, ctr Container, opts FollowOptions) (io.ReadCloser, error)
}

// dockerClientWrapper wraps the Docker SDK client to implement our interface
type dockerClientWrapper struct {
	cli        *client.Client
	socketPath string
}

// Compile-time verification that dockerClientWrapper implements Client
var _ Client = (*dockerClientWrapper)(nil)

// NewClient connects to the Docker daemon at socketPath (or default if empty).
func NewClient(socketPath string) (Client, error) {
	opts := []client.Opt{
		client.WithAPIVersionNegotiation(),
	}

	// Add host option if socket path is specified
	if socketPath != "" {
		opts = append(opts, client.WithHost(socketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for socket %s: %w", socketPath, err)
	}

	wrapper := &dockerClientWrapper{
		cli:        cli,
		socketPath: socketPath,
	}
	return &dockerClient{cli: wrapper}, nil
}

// NewClientWithInterface is used for testing with mock implementations.
func NewClientWithInterface(dockerCli Client) Client {
	return &dockerClient{cli: dockerCli}
}

func (w *dockerClientWrapper) Ping(ctx context.Context) error {
	_, err := w.cli.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping Docker daemon at %s: %w", w.socketPath, err)
	}
	return nil
}

func (w *dockerClientWrapper) Close() error {
	return w.cli.Close()
}

func (w *dockerClientWrapper) ListRunning(ctx context.Context) ([]Container, error) {
	containers, err := w.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers from socket %s: %w", w.socketPath, err)
	}

	var result []Container
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = stripName(ctr.Names[0])
		}

		result = append(result, Container{
			ID:   ctr.ID,
			Name: name,
			TTY:  w.isInteractive(ctx, ctr.ID),
		})
	}

	return result, nil
}

// isInteractive reports whether the container was started with a TTY or an
// attached stdin. An inspect failure counts as non-interactive; the
// container may already be gone and the listing stays usable either way.
func (w *dockerClientWrapper) isInteractive(ctx context.Context, containerID string) bool {
	inspect, err := w.cli.ContainerInspect(ctx, containerID)
	if err != nil || inspect.Config == nil {
		return false
	}
	return inspect.Config.Tty || inspect.Config.OpenStdin
}

func (w *dockerClientWrapper) Resolve(ctx context.Context, name string) (Container, error) {
	containers, err := w.ListRunning(ctx)
	if err != nil {
		return Container{}, err
	}
	ctr, ok := findByName(containers, name)
	if !ok {
		return Container{}, fmt.Errorf("no running container named %s: %w", name, ErrNotFound)
	}
	return ctr, nil
}

func (w *dockerClientWrapper) FollowLogs(ctx context.Context, ctr Container, opts FollowOptions) (io.ReadCloser, error) {
	logOpts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       opts.Tail,
	}
	if opts.Since > 0 {
		logOpts.Since = sinceTimestamp(time.Now(), opts.Since)
	}

	reader, err := w.cli.ContainerLogs(ctx, ctr.ID, logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open log stream for container %s: %w", ctr.ID, err)
	}
	return reader, nil
}

// stripName removes the leading slash the Docker API prepends to names.
func stripName(name string) string {
	if name != "" && name[0] == '/' {
		return name[1:]
	}
	return name
}

// findByName returns the container whose name equals name exactly.
func findByName(containers []Container, name string) (Container, bool) {
	for _, ctr := range containers {
		if ctr.Name == name {
			return ctr, true
		}
	}
	return Container{}, false
}

// sinceTimestamp renders the "since" bound the Docker API expects.
func sinceTimestamp(now time.Time, seconds int) string {
	return now.Add(-time.Duration(seconds) * time.Second).Format(time.RFC3339Nano)
}

// dockerClient wraps the Docker client with application-specific logic
type dockerClient struct {
	cli Client
}

func (c *dockerClient) Close() error {
	return c.cli.Close()
}

func (c *dockerClient) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx)
}

func (c *dockerClient) ListRunning(ctx context.Context) ([]Container, error) {
	return c.cli.ListRunning(ctx)
}

func (c *dockerClient) Resolve(ctx context.Context, name string) (Container, error) {
	return c.cli.Resolve(ctx, name)
}

func (c *dockerClient) FollowLogs(ctx context.Context, ctr Container, opts FollowOptions) (io.ReadCloser, error) {
	return c.cli.FollowLogs(ctx, ctr, opts)
}

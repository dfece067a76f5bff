package docker

// Container represents a running Docker container with the metadata the
// tailer needs.
type Container struct {
	ID   string
	Name string
	TTY  bool // pseudo-TTY or stdin attached (interactive)
}

// FollowOptions control how much history a log stream replays before
// following new output.
type FollowOptions struct {
	Tail  string // "all" or a decimal line count
	Since int    // seconds of history to include, 0 means unbounded
}

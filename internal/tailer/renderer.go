package tailer

import (
	"io"

	"github.com/fatih/color"
)

// Renderer writes attributed log lines and lifecycle banners to the
// terminal. Each input produces exactly one output line; no buffering
// beyond the writer's own.
type Renderer struct {
	out io.Writer
}

// NewRenderer returns a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Line prints one log line prefixed with its container name, the whole line
// in the container's color.
func (r *Renderer) Line(l Line) {
	_, _ = l.Color.Fprintf(r.out, "[%s] %s\n", l.Name, l.Text)
}

// Banner prints a "+ name" or "- name" lifecycle announcement in the
// container's color.
func (r *Renderer) Banner(prefix, name string, c *color.Color) {
	_, _ = c.Fprintf(r.out, "%s %s\n", prefix, name)
}

package tailer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestRenderer_Line(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Line(Line{Name: "worker-1", Color: palette[0], Text: "listening on :8080"})

	assert.Equal(t, "[worker-1] listening on :8080\n", buf.String())
}

func TestRenderer_Banners(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Banner("+", "worker-1", palette[0])
	r.Banner("-", "worker-1", palette[0])

	assert.Equal(t, "+ worker-1\n- worker-1\n", buf.String())
}

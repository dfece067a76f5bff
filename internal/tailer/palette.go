package tailer

import (
	"crypto/sha256"
	"math/big"

	"github.com/fatih/color"
)

// palette holds the readable display styles; one is picked per container,
// seeded deterministically from its name.
var palette = []*color.Color{
	color.New(color.FgCyan, color.Bold),
	color.New(color.FgMagenta, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgBlue, color.Bold),
	color.New(color.FgRed, color.Bold),
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgRed),
	color.New(color.FgHiCyan),
	color.New(color.FgHiMagenta),
	color.New(color.FgHiGreen),
	color.New(color.FgHiYellow),
	color.New(color.FgHiBlue),
	color.New(color.FgHiRed),
}

// Palette hands out display colors to tracked containers. It is owned by the
// multiplexer's control loop and must not be used concurrently.
type Palette struct {
	held map[string]*holder // container name -> slot claim
	used []int              // holders per slot; >1 only under exhaustion
}

// holder counts live instances of one name sharing a slot, so a slot stays
// claimed while any instance of the name is still tracked.
type holder struct {
	slot  int
	count int
}

// NewPalette returns an empty palette registry.
func NewPalette() *Palette {
	return &Palette{
		held: make(map[string]*holder),
		used: make([]int, len(palette)),
	}
}

// hashedIndex gives the deterministic starting slot for a name.
func hashedIndex(name string) int {
	sum := sha256.Sum256([]byte(name))
	n := new(big.Int).SetBytes(sum[:])
	return int(n.Mod(n, big.NewInt(int64(len(palette)))).Int64())
}

// Acquire returns a color for name:
//  1. Start from the name's hashed slot.
//  2. Take the first slot no live holder occupies, scanning forward.
//  3. If every slot is occupied, reuse the hashed slot.
//
// A name that already holds a slot gets the same color back, with its claim
// counted again so releasing one instance never frees the other's color.
func (p *Palette) Acquire(name string) *color.Color {
	if h, ok := p.held[name]; ok {
		h.count++
		p.used[h.slot]++
		return palette[h.slot]
	}

	start := hashedIndex(name)
	for off := 0; off < len(palette); off++ {
		slot := (start + off) % len(palette)
		if p.used[slot] == 0 {
			p.claim(name, slot)
			return palette[slot]
		}
	}

	// Palette exhausted; collisions are acceptable here.
	p.claim(name, start)
	return palette[start]
}

// Release drops one claim on the slot held by name, freeing it once the last
// instance lets go. Releasing an unknown name is a no-op.
func (p *Palette) Release(name string) {
	h, ok := p.held[name]
	if !ok {
		return
	}
	h.count--
	if p.used[h.slot] > 0 {
		p.used[h.slot]--
	}
	if h.count <= 0 {
		delete(p.held, name)
	}
}

func (p *Palette) claim(name string, slot int) {
	p.held[name] = &holder{slot: slot, count: 1}
	p.used[slot]++
}

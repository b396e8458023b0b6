/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package confetti simulates the particle burst shown when a game is won.
// It only moves particles; drawing them is up to the caller.
package confetti

import (
	"fmt"
	"math/rand/v2"
)

const (
	DefaultCount = 100

	// Gravity is added to every particle's vertical speed each frame.
	Gravity = 0.1

	spawnY     = -10
	fallMargin = 50
)

// Palette holds the colors particles are drawn in.
var Palette = []string{"#4ade80", "#86efac", "#22c55e", "#10b981", "#ffffff", "#f0fdf4"}

type Shape int

const (
	Square Shape = iota
	Circle
)

func (s Shape) String() string {
	switch s {
	case Square:
		return "square"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Particle positions are in the same units as the burst bounds.
// Rotation is in degrees.
type Particle struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	VX            float64 `json:"-"`
	VY            float64 `json:"-"`
	Rotation      float64 `json:"rotation"`
	RotationSpeed float64 `json:"-"`
	Size          float64 `json:"size"`
	Color         string  `json:"color"`
	Shape         Shape   `json:"shape"`
}

// Burst is a set of falling particles inside a width x height viewport.
type Burst struct {
	width     float64
	height    float64
	particles []Particle
}

// NewBurst spawns n particles just above the viewport.
func NewBurst(rng *rand.Rand, width, height float64, n int) *Burst {
	b := &Burst{
		width:     width,
		height:    height,
		particles: make([]Particle, 0, n),
	}

	for range n {
		p := Particle{
			X:             rng.Float64() * width,
			Y:             spawnY,
			VX:            (rng.Float64() - 0.5) * 4,
			VY:            rng.Float64()*3 + 2,
			Rotation:      rng.Float64() * 360,
			RotationSpeed: (rng.Float64() - 0.5) * 10,
			Size:          rng.Float64()*8 + 4,
			Color:         Palette[rng.IntN(len(Palette))],
			Shape:         Square,
		}
		if rng.Float64() > 0.5 {
			p.Shape = Circle
		}

		b.particles = append(b.particles, p)
	}

	return b
}

// Step advances every particle by one frame and drops the ones that have
// fallen past the bottom of the viewport.
func (b *Burst) Step() {
	kept := b.particles[:0]

	for _, p := range b.particles {
		p.X += p.VX
		p.Y += p.VY
		p.Rotation += p.RotationSpeed
		p.VY += Gravity

		if p.Y > b.height+fallMargin {
			continue
		}
		kept = append(kept, p)
	}

	b.particles = kept
}

// Resize changes the bounds used for removal; particles keep their positions.
func (b *Burst) Resize(width, height float64) {
	b.width = width
	b.height = height
}

func (b *Burst) Done() bool {
	return len(b.particles) == 0
}

func (b *Burst) Len() int {
	return len(b.particles)
}

// Particles returns a snapshot of the live particles.
func (b *Burst) Particles() []Particle {
	out := make([]Particle, len(b.particles))
	copy(out, b.particles)

	return out
}

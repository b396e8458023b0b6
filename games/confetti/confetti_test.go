/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package confetti

import (
	"math/rand/v2"
	"slices"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBurst(t *testing.T) {
	Convey("Given a fresh burst", t, func() {
		rng := rand.New(rand.NewPCG(7, 11))
		b := NewBurst(rng, 800, 600, DefaultCount)

		Convey("Every particle spawns above the viewport within its width", func() {
			So(b.Len(), ShouldEqual, DefaultCount)

			for _, p := range b.Particles() {
				So(p.Y, ShouldEqual, spawnY)
				So(p.X, ShouldBeBetweenOrEqual, 0, 800)
				So(p.VX, ShouldBeBetweenOrEqual, -2, 2)
				So(p.VY, ShouldBeBetweenOrEqual, 2, 5)
				So(p.Size, ShouldBeBetweenOrEqual, 4, 12)
				So(slices.Contains(Palette, p.Color), ShouldBeTrue)
				So(p.Shape, ShouldBeIn, Square, Circle)
			}
		})

		Convey("A step moves particles and applies gravity", func() {
			before := b.Particles()
			b.Step()
			after := b.Particles()

			So(after, ShouldHaveLength, len(before))
			for i := range after {
				So(after[i].X, ShouldAlmostEqual, before[i].X+before[i].VX)
				So(after[i].Y, ShouldAlmostEqual, before[i].Y+before[i].VY)
				So(after[i].VY, ShouldAlmostEqual, before[i].VY+Gravity)
				So(after[i].Rotation, ShouldAlmostEqual, before[i].Rotation+before[i].RotationSpeed)
			}
		})

		Convey("Particles returns a snapshot", func() {
			snap := b.Particles()
			snap[0].Y = 1e9
			b.Step()

			So(b.Len(), ShouldEqual, DefaultCount)
		})

		Convey("Every particle eventually falls out", func() {
			steps := 0
			for !b.Done() && steps < 1000 {
				b.Step()
				steps++
			}

			So(b.Done(), ShouldBeTrue)
			So(steps, ShouldBeLessThan, 1000)
		})

		Convey("Shrinking the viewport drops particles sooner", func() {
			b.Step()
			b.Resize(800, -100)
			b.Step()

			So(b.Done(), ShouldBeTrue)
		})
	})

	Convey("Particles that fall past the margin are removed individually", t, func() {
		b := &Burst{
			width:  100,
			height: 100,
			particles: []Particle{
				{Y: 149},
				{Y: 151},
				{Y: 152},
				{Y: 10},
			},
		}

		b.Step()

		So(b.Len(), ShouldEqual, 2)
		So(b.Particles()[0].Y, ShouldEqual, 149)
		So(b.Particles()[1].Y, ShouldEqual, 10)
	})

	Convey("An empty burst is done at once", t, func() {
		b := NewBurst(rand.New(rand.NewPCG(1, 1)), 100, 100, 0)
		So(b.Done(), ShouldBeTrue)
	})
}

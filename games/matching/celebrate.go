/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"github.com/Seednode/chronomatch/games/confetti"
)

type celebration struct {
	burst   *confetti.Burst
	stopped bool
}

// startCelebration draws the first frame right away, then one frame per
// frameInterval until the burst is empty or CelebrationLimit has passed.
func (s *Session) startCelebration() {
	c := &celebration{
		burst: confetti.NewBurst(s.rng, s.viewport.Width, s.viewport.Height, s.particleCount),
	}
	s.celebration = c

	s.scheduler.After(CelebrationLimit, func() {
		s.stopCelebration(c)
	})

	s.frame(c)
}

func (s *Session) frame(c *celebration) {
	if c.stopped {
		return
	}

	c.burst.Step()
	if c.burst.Done() {
		s.stopCelebration(c)
		return
	}

	s.renderer.DrawFrame(s.viewport, c.burst.Particles())

	s.scheduler.After(s.frameInterval, func() {
		s.frame(c)
	})
}

func (s *Session) stopCelebration(c *celebration) {
	if c == nil || c.stopped {
		return
	}

	c.stopped = true
	if s.celebration == c {
		s.celebration = nil
	}

	s.renderer.ClearCanvas()
}

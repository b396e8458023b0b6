/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"time"

	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
)

// Content supplies period data. It is read once per period selection.
type Content interface {
	Period(id string) (content.Period, bool)
}

// Renderer receives every visual change a session makes. Implementations
// must treat unknown refs and keys as no-ops.
type Renderer interface {
	// RenderPeriod replaces both columns and shows the game board.
	RenderPeriod(p content.Period, dates, events []DisplayItem)
	// ClearPeriod hides the game board and returns to period selection.
	ClearPeriod()

	SetItemState(ref ItemRef, state ItemState)

	// DrawConnector replaces any connector with the same key.
	DrawConnector(c Connector)
	RemoveConnector(key ConnectorKey)
	ClearConnectors()

	SetControls(c Controls)

	ShowMessage(m Message)
	DismissMessage(id int)

	ShowCompletion()
	DrawFrame(v Viewport, particles []confetti.Particle)
	ClearCanvas()
}

// Scheduler runs fn once after d. The callback must be delivered on the
// same event loop that issues commands to the session.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type SchedulerFunc func(d time.Duration, fn func())

func (f SchedulerFunc) After(d time.Duration, fn func()) {
	f(d, fn)
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
)

type staticContent map[string]content.Period

func (c staticContent) Period(id string) (content.Period, bool) {
	p, ok := c[id]
	return p, ok
}

func testContent() staticContent {
	return staticContent{
		"three": {
			ID:    "three",
			Title: "Three pairs",
			Events: []content.EventPair{
				{Date: "1206", Event: "Genghis Khan"},
				{Date: "1324", Event: "Mansa Musa"},
				{Date: "1453", Event: "Constantinople"},
			},
		},
		"two": {
			ID:    "two",
			Title: "Two pairs",
			Events: []content.EventPair{
				{Date: "1789", Event: "Bastille"},
				{Date: "1804", Event: "Haiti"},
			},
		},
	}
}

// recorder keeps the latest picture a renderer would show.
type recorder struct {
	period      string
	dates       []DisplayItem
	events      []DisplayItem
	states      map[ItemRef]ItemState
	connectors  map[ConnectorKey]Connector
	controls    Controls
	messages    map[int]Message
	dismissed   []int
	completions int
	frames      int
	canvasClear int
	renders     int
	cleared     int
}

func newRecorder() *recorder {
	return &recorder{
		states:     make(map[ItemRef]ItemState),
		connectors: make(map[ConnectorKey]Connector),
		messages:   make(map[int]Message),
	}
}

func (r *recorder) RenderPeriod(p content.Period, dates, events []DisplayItem) {
	r.period = p.ID
	r.dates = dates
	r.events = events
	r.states = make(map[ItemRef]ItemState)
	r.renders++
}

func (r *recorder) ClearPeriod() {
	r.period = ""
	r.dates = nil
	r.events = nil
	r.states = make(map[ItemRef]ItemState)
	r.cleared++
}

func (r *recorder) SetItemState(ref ItemRef, state ItemState) {
	if state == 0 {
		delete(r.states, ref)
		return
	}
	r.states[ref] = state
}

func (r *recorder) DrawConnector(c Connector) { r.connectors[c.Key] = c }
func (r *recorder) RemoveConnector(key ConnectorKey) { delete(r.connectors, key) }
func (r *recorder) ClearConnectors() { clear(r.connectors) }
func (r *recorder) SetControls(c Controls) { r.controls = c }
func (r *recorder) ShowMessage(m Message) { r.messages[m.ID] = m }
func (r *recorder) ShowCompletion() { r.completions++ }
func (r *recorder) ClearCanvas() { r.canvasClear++ }
func (r *recorder) DrawFrame(Viewport, []confetti.Particle) { r.frames++ }

func (r *recorder) DismissMessage(id int) {
	delete(r.messages, id)
	r.dismissed = append(r.dismissed, id)
}

type pending struct {
	at  time.Duration
	seq int
	fn  func()
}

// manualClock is a Scheduler driven by Advance instead of wall time.
type manualClock struct {
	now     time.Duration
	seq     int
	pending []pending
}

func (c *manualClock) After(d time.Duration, fn func()) {
	c.seq++
	c.pending = append(c.pending, pending{at: c.now + d, seq: c.seq, fn: fn})
}

// Advance runs, in order, every callback due within d, including callbacks
// scheduled by callbacks.
func (c *manualClock) Advance(d time.Duration) {
	target := c.now + d

	for {
		sort.Slice(c.pending, func(i, j int) bool {
			if c.pending[i].at == c.pending[j].at {
				return c.pending[i].seq < c.pending[j].seq
			}
			return c.pending[i].at < c.pending[j].at
		})

		if len(c.pending) == 0 || c.pending[0].at > target {
			break
		}

		next := c.pending[0]
		c.pending = c.pending[1:]
		c.now = next.at
		next.fn()
	}

	c.now = target
}

func (c *manualClock) Len() int {
	return len(c.pending)
}

type fixture struct {
	session  *Session
	renderer *recorder
	clock    *manualClock
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		renderer: newRecorder(),
		clock:    &manualClock{},
	}

	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	f.session = New(testContent(), f.renderer, f.clock, opts...)

	return f
}

func (f *fixture) match(event, date int) {
	_ = f.session.Select(EventRef(event))
	_ = f.session.Select(DateRef(date))
}

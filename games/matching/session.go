/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package matching implements the date/event matching game.
//
// A Session holds one player's board: the shuffled date and event columns,
// the current selections and the set of matches. Every user action is a
// method call; every visual change goes out through a Renderer; every delay
// goes through a Scheduler. A Session is not safe for concurrent use. Its
// owner must call it, and deliver scheduled callbacks, from one event loop.
//
// Flow:
//   - Selecting one date and one event (by click, key or drag) matches them,
//     evicting any older match that used either item
//   - Submit grades every match without removing it
//   - All correct and complete: the game is won after CompletionDelay
//   - All correct but incomplete: play resumes after AutoRetryDelay
//   - Anything wrong: Retry removes the wrong matches only
//   - ClearAll, Replay and ChangePeriod reset the board
package matching

import (
	"math/rand/v2"
	"time"

	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
)

const noSelection = -1

// Option configures a Session.
type Option func(*Session)

// WithRand sets the source used to shuffle columns and spawn confetti.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithFrameInterval sets the delay between celebration frames.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithParticleCount sets the size of the celebration burst.
func WithParticleCount(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.particleCount = n
		}
	}
}

// WithHideCorrect sets the initial state of the hide-correct toggle.
func WithHideCorrect(on bool) Option {
	return func(s *Session) {
		s.hideCorrect = on
	}
}

type Session struct {
	content   Content
	renderer  Renderer
	scheduler Scheduler

	rng           *rand.Rand
	frameInterval time.Duration
	particleCount int

	period  content.Period
	dates   []DisplayItem
	events  []DisplayItem
	states  map[ItemRef]ItemState
	matches *MatchSet

	selectedDate  int
	selectedEvent int

	phase       Phase
	submitted   bool
	hideCorrect bool
	completions int

	// epoch invalidates deferred transitions scheduled before a reset.
	epoch int

	viewport    Viewport
	celebration *celebration

	nextMessageID int
	messages      map[int]bool
}

// New creates an idle session. Call SelectPeriod to start playing.
func New(c Content, r Renderer, sched Scheduler, opts ...Option) *Session {
	s := &Session{
		content:       c,
		renderer:      r,
		scheduler:     sched,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		frameInterval: DefaultFrameInterval,
		particleCount: confetti.DefaultCount,
		states:        make(map[ItemRef]ItemState),
		matches:       NewMatchSet(),
		selectedDate:  noSelection,
		selectedEvent: noSelection,
		viewport:      DefaultViewport,
		messages:      make(map[int]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Submitted() bool { return s.submitted }

func (s *Session) HideCorrect() bool { return s.hideCorrect }

func (s *Session) Viewport() Viewport { return s.viewport }

func (s *Session) Celebrating() bool { return s.celebration != nil }

// Completions counts how many times this session reached the won state.
func (s *Session) Completions() int { return s.completions }

// Matches returns the current pairs ordered by event index.
func (s *Session) Matches() []Pair { return s.matches.Pairs() }

func (s *Session) MatchCount() int { return s.matches.Len() }

// Dates returns the date column in display order.
func (s *Session) Dates() []DisplayItem {
	return append([]DisplayItem(nil), s.dates...)
}

// Events returns the event column in display order.
func (s *Session) Events() []DisplayItem {
	return append([]DisplayItem(nil), s.events...)
}

// Period returns the period being played, if any.
func (s *Session) Period() (content.Period, bool) {
	return s.period, s.phase != PhaseIdle
}

func (s *Session) State(ref ItemRef) ItemState {
	return s.states[ref]
}

// Selected returns the selected item index of the given kind.
func (s *Session) Selected(kind Kind) (int, bool) {
	idx := s.selectedDate
	if kind == KindEvent {
		idx = s.selectedEvent
	}
	return idx, idx != noSelection
}

// SelectPeriod starts a fresh play-through of the period with the given id.
func (s *Session) SelectPeriod(id string) error {
	p, ok := s.content.Period(id)
	if !ok {
		return ErrUnknownPeriod
	}

	s.reset()

	s.period = p
	s.dates = s.shuffle(p.Events, KindDate)
	s.events = s.shuffle(p.Events, KindEvent)
	s.phase = PhasePlaying

	s.renderer.ClearConnectors()
	s.renderer.RenderPeriod(s.period, s.Dates(), s.Events())
	s.updateControls()

	return nil
}

func (s *Session) shuffle(pairs []content.EventPair, kind Kind) []DisplayItem {
	items := make([]DisplayItem, len(pairs))
	for i, p := range pairs {
		text := p.Date
		if kind == KindEvent {
			text = p.Event
		}
		items[i] = DisplayItem{Kind: kind, Text: text, OriginalIndex: i}
	}

	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	for i := range items {
		items[i].DisplayIndex = i
	}

	return items
}

// Replay restarts the current period with a new shuffle and the
// hide-correct toggle turned off.
func (s *Session) Replay() error {
	if s.phase == PhaseIdle {
		return ErrNoPeriod
	}

	s.hideCorrect = false

	return s.SelectPeriod(s.period.ID)
}

// ChangePeriod abandons the current period and returns to period selection.
func (s *Session) ChangePeriod() {
	s.reset()

	s.period = content.Period{}
	s.dates = nil
	s.events = nil
	s.phase = PhaseIdle
	s.hideCorrect = false

	s.renderer.ClearConnectors()
	s.renderer.ClearPeriod()
	s.updateControls()
}

// reset drops all per-play-through state without touching the renderer
// beyond stopping a running celebration.
func (s *Session) reset() {
	s.epoch++
	s.stopCelebration(s.celebration)

	s.matches.Clear()
	clear(s.states)
	s.selectedDate = noSelection
	s.selectedEvent = noSelection
	s.submitted = false
}

func (s *Session) known(ref ItemRef) bool {
	if s.phase == PhaseIdle || ref.Index < 0 || ref.Index >= len(s.period.Events) {
		return false
	}
	return ref.Kind == KindDate || ref.Kind == KindEvent
}

// Select toggles the selection of an item. Once a date and an event are
// both selected they are matched.
func (s *Session) Select(ref ItemRef) error {
	if !s.known(ref) {
		return ErrUnknownItem
	}
	if s.submitted {
		return nil
	}

	current := s.selection(ref.Kind)
	if current != noSelection {
		s.updateState(ItemRef{Kind: ref.Kind, Index: current}, 0, StateSelected)
	}

	if current == ref.Index {
		s.setSelection(ref.Kind, noSelection)
	} else {
		s.setSelection(ref.Kind, ref.Index)
		s.updateState(ref, StateSelected, 0)
	}

	if s.selectedDate != noSelection && s.selectedEvent != noSelection {
		s.createMatch()
	}

	s.updateControls()

	return nil
}

// Key handles keyboard activation of an item: Enter and Space select it,
// Escape clears both selections.
func (s *Session) Key(ref ItemRef, key string) error {
	switch key {
	case "Enter", " ", "Space", "Spacebar":
		return s.Select(ref)
	case "Escape", "Esc":
		s.ClearSelections()
	}

	return nil
}

// ClearSelections deselects the selected date and event, if any.
func (s *Session) ClearSelections() {
	if s.selectedDate != noSelection {
		s.updateState(DateRef(s.selectedDate), 0, StateSelected)
		s.selectedDate = noSelection
	}
	if s.selectedEvent != noSelection {
		s.updateState(EventRef(s.selectedEvent), 0, StateSelected)
		s.selectedEvent = noSelection
	}
}

func (s *Session) selection(kind Kind) int {
	if kind == KindDate {
		return s.selectedDate
	}
	return s.selectedEvent
}

func (s *Session) setSelection(kind Kind, idx int) {
	if kind == KindDate {
		s.selectedDate = idx
	} else {
		s.selectedEvent = idx
	}
}

func (s *Session) createMatch() {
	date, event := s.selectedDate, s.selectedEvent

	for _, p := range s.matches.Evict(event, date) {
		s.unmatch(p)
	}

	s.matches.Set(event, date)

	s.updateState(DateRef(date), StateMatched, StateSelected)
	s.updateState(EventRef(event), StateMatched, StateSelected)
	s.drawConnector(Pair{Event: event, Date: date})

	s.selectedDate = noSelection
	s.selectedEvent = noSelection
}

// unmatch clears the visuals of a pair already removed from the match set.
func (s *Session) unmatch(p Pair) {
	s.updateState(DateRef(p.Date), 0, StateGraded)
	s.updateState(EventRef(p.Event), 0, StateGraded)
	s.renderer.RemoveConnector(p.Key())
}

// Submit grades every match. It never removes matches; the outcome decides
// what happens next.
func (s *Session) Submit() (Result, error) {
	if s.phase == PhaseIdle {
		return Result{}, ErrNoPeriod
	}
	if s.matches.Len() == 0 {
		return Result{}, ErrNothingToSubmit
	}
	if s.submitted {
		return Result{}, ErrAlreadySubmitted
	}

	s.submitted = true

	res := Result{Total: len(s.period.Events)}
	for _, p := range s.matches.Pairs() {
		grade := StateIncorrect
		if p.Correct() {
			grade = StateCorrect
			res.Correct++
		} else {
			res.Incorrect++
		}

		s.updateState(DateRef(p.Date), grade, StateMatched|StateCorrect|StateIncorrect)
		s.updateState(EventRef(p.Event), grade, StateMatched|StateCorrect|StateIncorrect)
		s.drawConnector(p)
	}

	epoch := s.epoch
	switch {
	case res.Incorrect == 0 && res.Correct == res.Total:
		res.Outcome = OutcomeComplete
		s.phase = PhaseSubmitted
		s.scheduler.After(CompletionDelay, func() {
			if s.epoch == epoch {
				s.complete()
			}
		})
	case res.Incorrect == 0:
		res.Outcome = OutcomeContinue
		s.phase = PhaseSubmitted
		s.scheduler.After(AutoRetryDelay, func() {
			if s.epoch == epoch {
				s.autoRetry()
			}
		})
	default:
		res.Outcome = OutcomeRetry
		s.phase = PhaseReviewing
	}

	s.updateControls()

	return res, nil
}

func (s *Session) complete() {
	if s.phase == PhaseComplete {
		return
	}

	s.phase = PhaseComplete
	s.completions++

	s.renderer.ShowCompletion()
	s.updateControls()
	s.startCelebration()
}

func (s *Session) autoRetry() {
	if s.hideCorrect {
		s.hideCorrectMatches()
	}

	s.submitted = false
	s.phase = PhasePlaying
	s.updateControls()

	s.showMessage(MessageAutoRetry, map[string]any{"HiddenCorrect": s.hideCorrect})
}

// Retry removes the incorrect matches and reopens the board.
func (s *Session) Retry() error {
	if s.phase != PhaseReviewing {
		return ErrNothingToRetry
	}

	for _, p := range s.matches.Pairs() {
		if !s.states[DateRef(p.Date)].Has(StateIncorrect) {
			continue
		}

		s.matches.Delete(p.Event)
		s.updateState(DateRef(p.Date), 0, StateIncorrect|StateMatched)
		s.updateState(EventRef(p.Event), 0, StateIncorrect|StateMatched)
		s.renderer.RemoveConnector(p.Key())
	}

	s.submitted = false
	s.phase = PhasePlaying
	s.updateControls()

	return nil
}

// ClearAll removes every match, selection and connector. It works in every
// phase; clearing a won game starts a new play-through of the same board.
func (s *Session) ClearAll() {
	s.epoch++
	s.stopCelebration(s.celebration)

	wasComplete := s.phase == PhaseComplete

	s.matches.Clear()
	s.selectedDate = noSelection
	s.selectedEvent = noSelection
	s.submitted = false

	for ref, st := range s.states {
		s.updateState(ref, 0, st&(StateSelected|StateGraded))
	}

	s.renderer.ClearConnectors()

	if s.phase != PhaseIdle {
		s.phase = PhasePlaying
	}
	if wasComplete {
		s.renderer.RenderPeriod(s.period, s.Dates(), s.Events())
	}

	s.updateControls()
}

// SetHideCorrect flips the hide-correct toggle. Turning it on takes effect
// at the next partial submission; turning it off shows hidden matches now.
func (s *Session) SetHideCorrect(on bool) {
	s.hideCorrect = on

	if !on {
		s.showHiddenCorrect()
	}

	s.updateControls()
}

func (s *Session) hideCorrectMatches() {
	for _, p := range s.matches.Pairs() {
		if !s.states[DateRef(p.Date)].Has(StateCorrect) {
			continue
		}

		s.updateState(DateRef(p.Date), StateHiddenCorrect, 0)
		s.updateState(EventRef(p.Event), StateHiddenCorrect, 0)
		s.drawConnector(p)
	}
}

func (s *Session) showHiddenCorrect() {
	for ref, st := range s.states {
		if st.Has(StateHiddenCorrect) {
			s.updateState(ref, 0, StateHiddenCorrect)
		}
	}

	for _, p := range s.matches.Pairs() {
		if s.states[DateRef(p.Date)].Has(StateCorrect) {
			s.drawConnector(p)
		}
	}
}

// Resize records a new viewport and redraws every connector, since item
// positions may have moved.
func (s *Session) Resize(v Viewport) {
	if v.Width > 0 && v.Height > 0 {
		s.viewport = v
	}

	if s.celebration != nil {
		s.celebration.burst.Resize(s.viewport.Width, s.viewport.Height)
	}

	s.RedrawConnectors()
}

// RedrawConnectors clears and redraws the connector of every match, for a
// renderer whose item positions moved.
func (s *Session) RedrawConnectors() {
	s.renderer.ClearConnectors()

	for _, p := range s.matches.Pairs() {
		s.drawConnector(p)
	}
}

// Refresh replays the whole view to the renderer, for a renderer that
// attached after the session started.
func (s *Session) Refresh() {
	if s.phase == PhaseIdle {
		s.renderer.ClearConnectors()
		s.renderer.ClearPeriod()
		s.updateControls()
		return
	}

	s.renderer.RenderPeriod(s.period, s.Dates(), s.Events())
	for ref, st := range s.states {
		s.renderer.SetItemState(ref, st)
	}
	s.RedrawConnectors()
	s.updateControls()

	if s.phase == PhaseComplete {
		s.renderer.ShowCompletion()
	}
}

func (s *Session) drawConnector(p Pair) {
	st := s.states[DateRef(p.Date)]

	c := Connector{Key: p.Key(), Style: StyleMatched}
	switch {
	case st.Has(StateCorrect):
		c.Style = StyleCorrect
	case st.Has(StateIncorrect):
		c.Style = StyleIncorrect
	}
	c.Hidden = st.Has(StateHiddenCorrect)

	s.renderer.DrawConnector(c)
}

func (s *Session) updateState(ref ItemRef, add, remove ItemState) {
	old := s.states[ref]

	next := (old &^ remove) | add
	if next == old {
		return
	}

	if next == 0 {
		delete(s.states, ref)
	} else {
		s.states[ref] = next
	}

	s.renderer.SetItemState(ref, next)
}

// Controls reports which buttons the current phase offers.
func (s *Session) Controls() Controls {
	active := s.phase == PhasePlaying || s.phase == PhaseSubmitted || s.phase == PhaseReviewing

	return Controls{
		Phase:             s.phase,
		SubmitEnabled:     s.phase == PhasePlaying && s.matches.Len() > 0,
		SubmitVisible:     s.phase == PhasePlaying,
		RetryVisible:      s.phase == PhaseReviewing,
		ClearVisible:      active,
		HideToggleVisible: active,
		HideCorrect:       s.hideCorrect,
		Matched:           s.matches.Len(),
		Total:             len(s.period.Events),
	}
}

func (s *Session) updateControls() {
	s.renderer.SetControls(s.Controls())
}

func (s *Session) showMessage(key string, data map[string]any) {
	s.nextMessageID++
	id := s.nextMessageID

	s.messages[id] = true
	s.renderer.ShowMessage(Message{ID: id, Key: key, Data: data})

	// Dismissal is not tied to the epoch: a message outlives board resets.
	s.scheduler.After(MessageDuration, func() {
		s.dismissMessage(id)
	})
}

func (s *Session) dismissMessage(id int) {
	if !s.messages[id] {
		return
	}

	delete(s.messages, id)
	s.renderer.DismissMessage(id)
}

// ActiveMessages returns the ids of messages still on screen.
func (s *Session) ActiveMessages() []int {
	ids := make([]int, 0, len(s.messages))
	for id := range s.messages {
		ids = append(ids, id)
	}
	return ids
}

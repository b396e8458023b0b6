/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownPeriod    = errors.New("unknown period")
	ErrUnknownItem      = errors.New("unknown item")
	ErrNoPeriod         = errors.New("no period selected")
	ErrNothingToSubmit  = errors.New("no matches to submit")
	ErrAlreadySubmitted = errors.New("matches already submitted")
	ErrNothingToRetry   = errors.New("no graded matches to retry")
	ErrSubmitted        = errors.New("items are locked until the submission resolves")
	ErrMalformedPayload = errors.New("malformed drag payload")
	ErrSameKind         = errors.New("cannot match two items of the same kind")
)

// Delays between a submission and its deferred transitions.
const (
	CompletionDelay      = 1000 * time.Millisecond
	AutoRetryDelay       = 1500 * time.Millisecond
	MessageDuration      = 3000 * time.Millisecond
	CelebrationLimit     = 5000 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
)

// Kind tells the two columns of a game apart.
type Kind int

const (
	KindDate Kind = iota
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "date" or "event".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return KindDate, nil
	case "event":
		return KindEvent, nil
	default:
		return 0, fmt.Errorf("%w: kind %q", ErrUnknownItem, s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != KindDate && k != KindEvent {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ItemRef identifies a displayed item by its kind and the index of the
// event pair it was built from.
type ItemRef struct {
	Kind  Kind `json:"kind"`
	Index int  `json:"index"`
}

func DateRef(index int) ItemRef  { return ItemRef{Kind: KindDate, Index: index} }
func EventRef(index int) ItemRef { return ItemRef{Kind: KindEvent, Index: index} }

func (r ItemRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Index)
}

// DisplayItem is one shuffled tile. OriginalIndex is the answer key,
// DisplayIndex only orders the column.
type DisplayItem struct {
	Kind          Kind   `json:"kind"`
	Text          string `json:"text"`
	OriginalIndex int    `json:"originalIndex"`
	DisplayIndex  int    `json:"displayIndex"`
}

func (d DisplayItem) Ref() ItemRef {
	return ItemRef{Kind: d.Kind, Index: d.OriginalIndex}
}

// Label is the accessible name announced for the tile.
func (d DisplayItem) Label() string {
	if d.Kind == KindDate {
		return "Date: " + d.Text
	}
	return "Event: " + d.Text
}

// ItemState is the set of visual flags applied to a tile.
type ItemState uint8

const (
	StateSelected ItemState = 1 << iota
	StateMatched
	StateCorrect
	StateIncorrect
	StateHiddenCorrect
	StateDragging
	StateDragOver
)

// StateGraded covers every flag a match can leave behind on its items.
const StateGraded = StateMatched | StateCorrect | StateIncorrect | StateHiddenCorrect

// StateDrag covers the flags a drag in progress sets.
const StateDrag = StateDragging | StateDragOver

var stateClasses = []struct {
	state ItemState
	class string
}{
	{StateSelected, "selected"},
	{StateMatched, "matched"},
	{StateCorrect, "correct"},
	{StateIncorrect, "incorrect"},
	{StateHiddenCorrect, "hidden-correct"},
	{StateDragging, "dragging"},
	{StateDragOver, "drag-over"},
}

func (s ItemState) Has(flag ItemState) bool {
	return s&flag == flag
}

// Classes lists the CSS class names for the flags that are set.
func (s ItemState) Classes() []string {
	classes := make([]string, 0, len(stateClasses))
	for _, c := range stateClasses {
		if s.Has(c.state) {
			classes = append(classes, c.class)
		}
	}
	return classes
}

func (s ItemState) String() string {
	return strings.Join(s.Classes(), " ")
}

// ConnectorStyle mirrors the grading state of the match a connector belongs to.
type ConnectorStyle int

const (
	StyleMatched ConnectorStyle = iota
	StyleCorrect
	StyleIncorrect
)

func (c ConnectorStyle) String() string {
	switch c {
	case StyleCorrect:
		return "correct"
	case StyleIncorrect:
		return "incorrect"
	default:
		return "matched"
	}
}

func (c ConnectorStyle) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ConnectorKey uniquely identifies the line between a date and an event.
type ConnectorKey struct {
	Date  int `json:"date"`
	Event int `json:"event"`
}

// ID is the element id a browser uses for the connector path.
func (k ConnectorKey) ID() string {
	return fmt.Sprintf("connection-%d-%d", k.Date, k.Event)
}

type Connector struct {
	Key    ConnectorKey   `json:"key"`
	Style  ConnectorStyle `json:"style"`
	Hidden bool           `json:"hidden"`
}

// Phase is the coarse position of a session in its play-through.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhaseSubmitted
	PhaseReviewing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseSubmitted:
		return "submitted"
	case PhaseReviewing:
		return "reviewing"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Outcome is decided once per submission.
type Outcome int

const (
	// OutcomeComplete: every pair matched correctly.
	OutcomeComplete Outcome = iota
	// OutcomeContinue: everything submitted is correct but pairs remain.
	OutcomeContinue
	// OutcomeRetry: at least one match is wrong.
	OutcomeRetry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeContinue:
		return "continue"
	default:
		return "retry"
	}
}

type Result struct {
	Correct   int
	Incorrect int
	Total     int
	Outcome   Outcome
}

// Controls describes which game buttons are offered.
type Controls struct {
	Phase             Phase `json:"phase"`
	SubmitEnabled     bool  `json:"submitEnabled"`
	SubmitVisible     bool  `json:"submitVisible"`
	RetryVisible      bool  `json:"retryVisible"`
	ClearVisible      bool  `json:"clearVisible"`
	HideToggleVisible bool  `json:"hideToggleVisible"`
	HideCorrect       bool  `json:"hideCorrect"`
	Matched           int   `json:"matched"`
	Total             int   `json:"total"`
}

// MessageAutoRetry is shown after a partial, fully correct submission.
// Its data carries "HiddenCorrect" (bool).
const MessageAutoRetry = "AutoRetry"

// Message is a transient notice. Key is a translation id; renderers
// localize it.
type Message struct {
	ID   int            `json:"id"`
	Key  string         `json:"key"`
	Data map[string]any `json:"data,omitempty"`
}

// Viewport is the size of the surface the celebration is drawn on.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var DefaultViewport = Viewport{Width: 1280, Height: 720}

// Rect is an axis-aligned box in page coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64 { return r.Left + r.Width }
func (r Rect) MidY() float64  { return r.Top + r.Height/2 }

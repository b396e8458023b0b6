/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
	"github.com/Seednode/chronomatch/games/matching"
)

// Messages coming from clients
type ClientMessage struct {
	Type        string            `json:"type"`
	Period      string            `json:"period,omitempty"`       // period
	Item        *matching.ItemRef `json:"item,omitempty"`         // select / key / drag_* / drop
	Key         string            `json:"key,omitempty"`          // key
	Payload     string            `json:"payload,omitempty"`      // drop
	HideCorrect *bool             `json:"hide_correct,omitempty"` // hide_correct
	Layout      *Layout           `json:"layout,omitempty"`       // layout
}

func (m ClientMessage) item() (matching.ItemRef, error) {
	if m.Item == nil {
		return matching.ItemRef{}, matching.ErrUnknownItem
	}
	return *m.Item, nil
}

// Layout is a client's measurement of its own board, in page coordinates.
// Rects are keyed by original index.
type Layout struct {
	Viewport  matching.Viewport     `json:"viewport"`
	Container matching.Rect         `json:"container"`
	Dates     map[int]matching.Rect `json:"dates"`
	Events    map[int]matching.Rect `json:"events"`
}

// path returns the connector curve for key, or false when either tile has
// not been measured yet.
func (l *Layout) path(key matching.ConnectorKey) (string, bool) {
	if l == nil {
		return "", false
	}

	date, ok := l.Dates[key.Date]
	if !ok {
		return "", false
	}
	event, ok := l.Events[key.Event]
	if !ok {
		return "", false
	}

	return matching.CurvePath(l.Container, date, event), true
}

// PeriodSummary is what the period picker shows.
type PeriodSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

func summarize(p content.Period) PeriodSummary {
	return PeriodSummary{ID: p.ID, Title: p.Title, Subtitle: p.Subtitle}
}

// Sent on connect with every selectable period
type PeriodsMessage struct {
	Type    string          `json:"type"` // "periods"
	Periods []PeriodSummary `json:"periods"`
}

// ItemView is a tile as the browser draws it.
type ItemView struct {
	Kind         matching.Kind `json:"kind"`
	Index        int           `json:"index"`
	DisplayIndex int           `json:"display_index"`
	Text         string        `json:"text"`
	Label        string        `json:"label"`
}

func viewItems(items []matching.DisplayItem) []ItemView {
	views := make([]ItemView, len(items))
	for i, it := range items {
		views[i] = ItemView{
			Kind:         it.Kind,
			Index:        it.OriginalIndex,
			DisplayIndex: it.DisplayIndex,
			Text:         it.Text,
			Label:        it.Label(),
		}
	}
	return views
}

type RenderItemsMessage struct {
	Type   string        `json:"type"` // "render_items"
	Period PeriodSummary `json:"period"`
	Dates  []ItemView    `json:"dates"`
	Events []ItemView    `json:"events"`
}

type ItemStateMessage struct {
	Type    string           `json:"type"` // "item_state"
	Item    matching.ItemRef `json:"item"`
	Classes []string         `json:"classes"`
}

type ConnectorMessage struct {
	Type   string                  `json:"type"` // "connector"
	ID     string                  `json:"id"`
	Date   int                     `json:"date"`
	Event  int                     `json:"event"`
	Style  matching.ConnectorStyle `json:"style"`
	Hidden bool                    `json:"hidden"`
	Path   string                  `json:"path"`
}

type ConnectorRemovedMessage struct {
	Type string `json:"type"` // "connector_removed"
	ID   string `json:"id"`
}

type ControlsMessage struct {
	Type     string            `json:"type"` // "controls"
	Controls matching.Controls `json:"controls"`
	Progress string            `json:"progress"`
}

// NoticeMessage is a transient, already translated message.
type NoticeMessage struct {
	Type string `json:"type"` // "message"
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type DismissMessage struct {
	Type string `json:"type"` // "message_dismissed"
	ID   int    `json:"id"`
}

type CompletionMessage struct {
	Type  string `json:"type"` // "completion"
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ConfettiMessage carries one celebration frame, or clears the canvas.
type ConfettiMessage struct {
	Type      string              `json:"type"` // "confetti"
	Width     float64             `json:"width,omitempty"`
	Height    float64             `json:"height,omitempty"`
	Particles []confetti.Particle `json:"particles,omitempty"`
	Clear     bool                `json:"clear,omitempty"`
}

// DragPayloadMessage answers drag_start with the data the browser must put
// in its dataTransfer.
type DragPayloadMessage struct {
	Type    string           `json:"type"` // "drag_payload"
	Item    matching.ItemRef `json:"item"`
	Payload string           `json:"payload"`
}

// SimpleMessage is for notifications without a body ("period_cleared",
// "connectors_cleared") and for errors.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// BatchMessage carries everything one hub step produced for a client, in
// order. Steps that produce a single message send it unwrapped.
type BatchMessage struct {
	Type     string `json:"type"` // "batch"
	Messages []any  `json:"messages"`
}

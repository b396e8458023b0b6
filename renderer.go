/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
	"github.com/Seednode/chronomatch/games/matching"
	"github.com/Seednode/chronomatch/i18n"
)

// hubRenderer turns session output into websocket messages. Every message is
// built per client, since text is translated to the client's language and
// connector curves follow the client's own layout. It is only used from the
// hub goroutine.
type hubRenderer struct {
	hub *Hub

	// only narrows output to one client while it catches up after joining,
	// reports a layout, or drags.
	only *Client

	// dragger is the client whose drag is in progress. Drag highlights are
	// hidden from everyone else.
	dragger *Client
}

func (r *hubRenderer) each(build func(c *Client) (any, bool)) {
	if r.only != nil {
		if msg, ok := build(r.only); ok {
			r.hub.sendTo(r.only, msg)
		}
		return
	}

	for c := range r.hub.clients {
		if msg, ok := build(c); ok {
			r.hub.sendTo(c, msg)
		}
	}
}

func (r *hubRenderer) all(msg any) {
	r.each(func(*Client) (any, bool) { return msg, true })
}

func (r *hubRenderer) RenderPeriod(p content.Period, dates, events []matching.DisplayItem) {
	r.all(RenderItemsMessage{
		Type:   "render_items",
		Period: summarize(p),
		Dates:  viewItems(dates),
		Events: viewItems(events),
	})
}

func (r *hubRenderer) ClearPeriod() {
	r.all(SimpleMessage{Type: "period_cleared"})
}

func (r *hubRenderer) SetItemState(ref matching.ItemRef, state matching.ItemState) {
	r.each(func(c *Client) (any, bool) {
		st := state
		if c != r.dragger {
			st &^= matching.StateDrag
		}

		return ItemStateMessage{
			Type:    "item_state",
			Item:    ref,
			Classes: st.Classes(),
		}, true
	})
}

func (r *hubRenderer) DrawConnector(conn matching.Connector) {
	r.each(func(c *Client) (any, bool) {
		path, ok := c.layout.path(conn.Key)
		if !ok {
			return nil, false
		}

		return ConnectorMessage{
			Type:   "connector",
			ID:     conn.Key.ID(),
			Date:   conn.Key.Date,
			Event:  conn.Key.Event,
			Style:  conn.Style,
			Hidden: conn.Hidden,
			Path:   path,
		}, true
	})
}

func (r *hubRenderer) RemoveConnector(key matching.ConnectorKey) {
	r.all(ConnectorRemovedMessage{Type: "connector_removed", ID: key.ID()})
}

func (r *hubRenderer) ClearConnectors() {
	r.all(SimpleMessage{Type: "connectors_cleared"})
}

func (r *hubRenderer) SetControls(ctl matching.Controls) {
	r.each(func(c *Client) (any, bool) {
		return ControlsMessage{
			Type:     "controls",
			Controls: ctl,
			Progress: i18n.Tp(c.ctx, "MatchedCount", ctl.Matched, map[string]any{"Total": ctl.Total}),
		}, true
	})
}

func (r *hubRenderer) ShowMessage(m matching.Message) {
	r.each(func(c *Client) (any, bool) {
		return NoticeMessage{
			Type: "message",
			ID:   m.ID,
			Text: i18n.Td(c.ctx, m.Key, m.Data),
		}, true
	})
}

func (r *hubRenderer) DismissMessage(id int) {
	r.all(DismissMessage{Type: "message_dismissed", ID: id})
}

func (r *hubRenderer) ShowCompletion() {
	p, _ := r.hub.session.Period()

	r.each(func(c *Client) (any, bool) {
		return CompletionMessage{
			Type:  "completion",
			Title: i18n.T(c.ctx, "CompletionTitle"),
			Body:  i18n.Td(c.ctx, "CompletionBody", map[string]any{"Period": p.Title}),
		}, true
	})
}

// DrawFrame skips clients whose send buffer is full instead of dropping
// them; a missed frame is harmless. Each client gets the frame scaled to
// the viewport it last reported.
func (r *hubRenderer) DrawFrame(v matching.Viewport, particles []confetti.Particle) {
	if r.only != nil {
		r.hub.trySend(r.only, scaleFrame(v, particles, r.only.layout))
		return
	}

	for c := range r.hub.clients {
		r.hub.trySend(c, scaleFrame(v, particles, c.layout))
	}
}

// scaleFrame maps particles simulated in v onto the viewport of layout.
func scaleFrame(v matching.Viewport, particles []confetti.Particle, layout *Layout) ConfettiMessage {
	msg := ConfettiMessage{
		Type:      "confetti",
		Width:     v.Width,
		Height:    v.Height,
		Particles: particles,
	}

	if layout == nil || v.Width <= 0 || v.Height <= 0 {
		return msg
	}

	to := layout.Viewport
	if to.Width <= 0 || to.Height <= 0 || to == v {
		return msg
	}

	sx, sy := to.Width/v.Width, to.Height/v.Height

	scaled := make([]confetti.Particle, len(particles))
	for i, p := range particles {
		p.X *= sx
		p.Y *= sy
		p.Size *= min(sx, sy)
		scaled[i] = p
	}

	msg.Width, msg.Height = to.Width, to.Height
	msg.Particles = scaled

	return msg
}

func (r *hubRenderer) ClearCanvas() {
	r.all(ConfettiMessage{Type: "confetti", Clear: true})
}

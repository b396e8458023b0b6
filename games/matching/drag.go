/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"encoding/json"
	"fmt"
)

// DragPayload is the transfer data carried from a drag source to its drop
// target.
type DragPayload struct {
	Type          Kind `json:"type"`
	OriginalIndex int  `json:"originalIndex"`
	DisplayIndex  int  `json:"displayIndex"`
}

// DragStart marks ref as being dragged and returns the payload the drop
// target will hand back. Dragging is refused while a submission is pending.
func (s *Session) DragStart(ref ItemRef) ([]byte, error) {
	if !s.known(ref) {
		return nil, ErrUnknownItem
	}
	if s.submitted {
		return nil, ErrSubmitted
	}

	payload, err := json.Marshal(DragPayload{
		Type:          ref.Kind,
		OriginalIndex: ref.Index,
		DisplayIndex:  s.displayIndex(ref),
	})
	if err != nil {
		return nil, err
	}

	s.updateState(ref, StateDragging, 0)

	return payload, nil
}

func (s *Session) displayIndex(ref ItemRef) int {
	column := s.dates
	if ref.Kind == KindEvent {
		column = s.events
	}

	for _, item := range column {
		if item.OriginalIndex == ref.Index {
			return item.DisplayIndex
		}
	}

	return -1
}

// DragEnter highlights a potential drop target.
func (s *Session) DragEnter(ref ItemRef) {
	if s.submitted || !s.known(ref) {
		return
	}

	s.updateState(ref, StateDragOver, 0)
}

// DragLeave removes the drop highlight from ref.
func (s *Session) DragLeave(ref ItemRef) {
	s.updateState(ref, 0, StateDragOver)
}

// Drop matches the dragged item with target. Payloads that cannot be
// decoded, point at unknown items, or name the target's own kind leave the
// board unchanged.
func (s *Session) Drop(payload []byte, target ItemRef) error {
	if s.submitted {
		return nil
	}
	if !s.known(target) {
		return ErrUnknownItem
	}

	defer s.updateState(target, 0, StateDragOver)

	source, err := decodePayload(payload)
	if err != nil {
		return err
	}
	if !s.known(source) {
		return ErrUnknownItem
	}
	if source.Kind == target.Kind {
		return ErrSameKind
	}

	s.ClearSelections()

	if source.Kind == KindDate {
		s.selectedDate, s.selectedEvent = source.Index, target.Index
	} else {
		s.selectedDate, s.selectedEvent = target.Index, source.Index
	}

	s.createMatch()
	s.updateControls()

	return nil
}

func decodePayload(payload []byte) (ItemRef, error) {
	var p struct {
		Type          *Kind `json:"type"`
		OriginalIndex *int  `json:"originalIndex"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ItemRef{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Type == nil || p.OriginalIndex == nil {
		return ItemRef{}, fmt.Errorf("%w: missing type or originalIndex", ErrMalformedPayload)
	}

	return ItemRef{Kind: *p.Type, Index: *p.OriginalIndex}, nil
}

// DragEnd clears the dragging flag from ref and every drop highlight.
func (s *Session) DragEnd(ref ItemRef) {
	s.updateState(ref, 0, StateDragging)

	for r, st := range s.states {
		if st.Has(StateDragOver) {
			s.updateState(r, 0, StateDragOver)
		}
	}
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"sort"
)

// Pair is one user-formed association.
type Pair struct {
	Event int `json:"event"`
	Date  int `json:"date"`
}

// Correct reports whether both sides come from the same event pair.
func (p Pair) Correct() bool {
	return p.Event == p.Date
}

func (p Pair) Key() ConnectorKey {
	return ConnectorKey{Date: p.Date, Event: p.Event}
}

// MatchSet maps event indexes to date indexes. No date and no event ever
// appears in more than one pair.
type MatchSet struct {
	byEvent map[int]int
	byDate  map[int]int
}

func NewMatchSet() *MatchSet {
	return &MatchSet{
		byEvent: make(map[int]int),
		byDate:  make(map[int]int),
	}
}

func (m *MatchSet) Len() int {
	return len(m.byEvent)
}

// Evict removes every pair that uses the given event or date and returns them.
func (m *MatchSet) Evict(event, date int) []Pair {
	var evicted []Pair

	if d, ok := m.byEvent[event]; ok {
		evicted = append(evicted, Pair{Event: event, Date: d})
		delete(m.byEvent, event)
		delete(m.byDate, d)
	}

	if e, ok := m.byDate[date]; ok {
		evicted = append(evicted, Pair{Event: e, Date: date})
		delete(m.byEvent, e)
		delete(m.byDate, date)
	}

	return evicted
}

// Set stores event -> date, evicting conflicting pairs first.
func (m *MatchSet) Set(event, date int) []Pair {
	evicted := m.Evict(event, date)

	m.byEvent[event] = date
	m.byDate[date] = event

	return evicted
}

func (m *MatchSet) Delete(event int) (Pair, bool) {
	d, ok := m.byEvent[event]
	if !ok {
		return Pair{}, false
	}

	delete(m.byEvent, event)
	delete(m.byDate, d)

	return Pair{Event: event, Date: d}, true
}

func (m *MatchSet) DateFor(event int) (int, bool) {
	d, ok := m.byEvent[event]
	return d, ok
}

func (m *MatchSet) EventFor(date int) (int, bool) {
	e, ok := m.byDate[date]
	return e, ok
}

// Pairs returns every pair ordered by event index.
func (m *MatchSet) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.byEvent))
	for e, d := range m.byEvent {
		pairs = append(pairs, Pair{Event: e, Date: d})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Event < pairs[j].Event
	})

	return pairs
}

func (m *MatchSet) Clear() {
	clear(m.byEvent)
	clear(m.byDate)
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchSet(t *testing.T) {
	Convey("Given an empty match set", t, func() {
		m := NewMatchSet()

		Convey("Set stores both directions", func() {
			So(m.Set(2, 0), ShouldBeEmpty)

			d, ok := m.DateFor(2)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 0)

			e, ok := m.EventFor(0)
			So(ok, ShouldBeTrue)
			So(e, ShouldEqual, 2)
		})

		Convey("Reusing an event evicts its old pair", func() {
			m.Set(1, 1)
			evicted := m.Set(1, 3)

			So(evicted, ShouldResemble, []Pair{{Event: 1, Date: 1}})
			So(m.Len(), ShouldEqual, 1)

			_, ok := m.EventFor(1)
			So(ok, ShouldBeFalse)
		})

		Convey("Reusing both sides evicts two pairs", func() {
			m.Set(0, 1)
			m.Set(1, 0)
			evicted := m.Set(0, 0)

			So(evicted, ShouldHaveLength, 2)
			So(evicted, ShouldContain, Pair{Event: 0, Date: 1})
			So(evicted, ShouldContain, Pair{Event: 1, Date: 0})
			So(m.Pairs(), ShouldResemble, []Pair{{Event: 0, Date: 0}})
		})

		Convey("No date or event is ever used twice", func() {
			moves := [][2]int{{0, 1}, {1, 1}, {2, 0}, {0, 0}, {2, 2}, {1, 2}, {3, 3}, {3, 1}}
			for _, mv := range moves {
				m.Set(mv[0], mv[1])

				dates := map[int]bool{}
				for _, p := range m.Pairs() {
					So(dates[p.Date], ShouldBeFalse)
					dates[p.Date] = true
				}
				So(len(dates), ShouldEqual, m.Len())
			}
		})

		Convey("Pairs are ordered by event", func() {
			m.Set(3, 0)
			m.Set(1, 2)
			m.Set(2, 1)

			So(m.Pairs(), ShouldResemble, []Pair{
				{Event: 1, Date: 2},
				{Event: 2, Date: 1},
				{Event: 3, Date: 0},
			})
		})

		Convey("Delete and Clear drop pairs", func() {
			m.Set(0, 0)
			m.Set(1, 1)

			p, ok := m.Delete(0)
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, Pair{Event: 0, Date: 0})

			_, ok = m.Delete(0)
			So(ok, ShouldBeFalse)

			m.Clear()
			So(m.Len(), ShouldEqual, 0)
			_, ok = m.EventFor(1)
			So(ok, ShouldBeFalse)
		})
	})
}

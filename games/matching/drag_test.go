/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDrag(t *testing.T) {
	Convey("Given a session playing a three pair period", t, func() {
		f := newFixture()
		So(f.session.SelectPeriod("three"), ShouldBeNil)

		Convey("Starting a drag marks the item and describes it", func() {
			data, err := f.session.DragStart(EventRef(1))
			So(err, ShouldBeNil)
			So(f.renderer.states[EventRef(1)], ShouldEqual, StateDragging)

			var payload DragPayload
			So(json.Unmarshal(data, &payload), ShouldBeNil)
			So(payload.Type, ShouldEqual, KindEvent)
			So(payload.OriginalIndex, ShouldEqual, 1)

			var displayed int
			for _, e := range f.session.Events() {
				if e.OriginalIndex == 1 {
					displayed = e.DisplayIndex
				}
			}
			So(payload.DisplayIndex, ShouldEqual, displayed)

			So(string(data), ShouldContainSubstring, `"type":"event"`)
		})

		Convey("Dropping an event on a date matches them", func() {
			data, _ := f.session.DragStart(EventRef(2))
			f.session.DragEnter(DateRef(0))
			So(f.renderer.states[DateRef(0)], ShouldEqual, StateDragOver)

			So(f.session.Drop(data, DateRef(0)), ShouldBeNil)
			f.session.DragEnd(EventRef(2))

			So(f.session.Matches(), ShouldResemble, []Pair{{Event: 2, Date: 0}})
			So(f.renderer.states[DateRef(0)], ShouldEqual, StateMatched)
			So(f.renderer.states[EventRef(2)], ShouldEqual, StateMatched)
			So(f.renderer.connectors, ShouldContainKey, ConnectorKey{Date: 0, Event: 2})
			So(f.renderer.controls.SubmitEnabled, ShouldBeTrue)
		})

		Convey("Dropping a date on an event matches them", func() {
			data, _ := f.session.DragStart(DateRef(1))
			So(f.session.Drop(data, EventRef(1)), ShouldBeNil)

			So(f.session.Matches(), ShouldResemble, []Pair{{Event: 1, Date: 1}})
		})

		Convey("A drop replaces pending click selections", func() {
			_ = f.session.Select(DateRef(2))
			data, _ := f.session.DragStart(DateRef(1))
			So(f.session.Drop(data, EventRef(0)), ShouldBeNil)

			So(f.session.Matches(), ShouldResemble, []Pair{{Event: 0, Date: 1}})
			So(f.renderer.states, ShouldNotContainKey, DateRef(2))
		})

		Convey("A drop on the same kind changes nothing", func() {
			data, _ := f.session.DragStart(DateRef(0))
			f.session.DragEnter(DateRef(1))

			err := f.session.Drop(data, DateRef(1))
			So(errors.Is(err, ErrSameKind), ShouldBeTrue)
			So(f.session.MatchCount(), ShouldEqual, 0)
			So(f.renderer.states, ShouldNotContainKey, DateRef(1))
		})

		Convey("Malformed payloads change nothing", func() {
			for _, payload := range []string{``, `not json`, `{}`, `{"type":"date"}`, `{"originalIndex":1}`, `{"type":"planet","originalIndex":1}`} {
				err := f.session.Drop([]byte(payload), EventRef(0))
				So(err, ShouldNotBeNil)
			}

			err := f.session.Drop([]byte(`{"type":"date"}`), EventRef(0))
			So(errors.Is(err, ErrMalformedPayload), ShouldBeTrue)

			err = f.session.Drop([]byte(`{"type":"date","originalIndex":9}`), EventRef(0))
			So(errors.Is(err, ErrUnknownItem), ShouldBeTrue)

			So(f.session.MatchCount(), ShouldEqual, 0)
		})

		Convey("Drag end clears every highlight", func() {
			_, _ = f.session.DragStart(DateRef(0))
			f.session.DragEnter(EventRef(0))
			f.session.DragEnter(EventRef(1))
			f.session.DragLeave(EventRef(0))
			So(f.renderer.states, ShouldNotContainKey, EventRef(0))

			f.session.DragEnd(DateRef(0))
			So(f.renderer.states, ShouldBeEmpty)
		})

		Convey("While a submission is pending", func() {
			f.match(0, 0)
			_, _ = f.session.Submit()

			Convey("Drags are refused", func() {
				_, err := f.session.DragStart(DateRef(1))
				So(errors.Is(err, ErrSubmitted), ShouldBeTrue)
			})

			Convey("Drops are ignored", func() {
				payload := []byte(`{"type":"date","originalIndex":1,"displayIndex":0}`)
				So(f.session.Drop(payload, EventRef(1)), ShouldBeNil)
				So(f.session.MatchCount(), ShouldEqual, 1)
			})

			Convey("Drop targets do not highlight", func() {
				f.session.DragEnter(DateRef(2))
				So(f.renderer.states, ShouldNotContainKey, DateRef(2))
			})
		})
	})
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCurvePath(t *testing.T) {
	Convey("Given a container at the page origin", t, func() {
		container := Rect{Width: 600, Height: 400}

		Convey("The curve runs from the date's right edge to the event's left edge", func() {
			date := Rect{Left: 0, Top: 0, Width: 100, Height: 20}
			event := Rect{Left: 200, Top: 100, Width: 150, Height: 40}

			So(CurvePath(container, date, event), ShouldEqual, "M 100 10 C 130 10, 170 120, 200 120")
		})

		Convey("A flat connector keeps both control points on the line", func() {
			date := Rect{Left: 0, Top: 50, Width: 50, Height: 10}
			event := Rect{Left: 150, Top: 50, Width: 50, Height: 10}

			So(CurvePath(container, date, event), ShouldEqual, "M 50 55 C 80 55, 120 55, 150 55")
		})
	})

	Convey("Given a container offset from the page origin", t, func() {
		container := Rect{Left: 20, Top: 30, Width: 600, Height: 400}
		date := Rect{Left: 20, Top: 30, Width: 100, Height: 20}
		event := Rect{Left: 220, Top: 130, Width: 100, Height: 40}

		Convey("Coordinates are relative to the container", func() {
			So(CurvePath(container, date, event), ShouldEqual, "M 100 10 C 130 10, 170 120, 200 120")
		})
	})

	Convey("Fractional rects keep their precision", t, func() {
		date := Rect{Width: 10.5, Height: 5}

		So(CurvePath(Rect{}, date, Rect{Left: 10.5, Height: 5}), ShouldEqual, "M 10.5 2.5 C 10.5 2.5, 10.5 2.5, 10.5 2.5")
	})
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package matching

import (
	"strconv"
	"strings"
)

// CurvePath builds the SVG path for a connector running from the right edge
// of the date tile to the left edge of the event tile. Coordinates are
// relative to container, so callers must pass rects measured in the same
// layout pass.
func CurvePath(container, date, event Rect) string {
	startX := date.Right() - container.Left
	startY := date.MidY() - container.Top
	endX := event.Left - container.Left
	endY := event.MidY() - container.Top

	c1x := startX + (endX-startX)*0.3
	c2x := startX + (endX-startX)*0.7

	var b strings.Builder

	b.WriteString("M ")
	b.WriteString(num(startX) + " " + num(startY))
	b.WriteString(" C ")
	b.WriteString(num(c1x) + " " + num(startY) + ", ")
	b.WriteString(num(c2x) + " " + num(endY) + ", ")
	b.WriteString(num(endX) + " " + num(endY))

	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

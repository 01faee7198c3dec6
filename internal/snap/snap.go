// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package snap clamps a widget rectangle onto the boundaries of the screen
// working area when it comes to rest close to them.
package snap

// Rect is a rectangle in screen coordinates.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Point is a top-left position in screen coordinates.
type Point struct {
	X int
	Y int
}

// DefaultThreshold is the snap distance in screen units.
const DefaultThreshold = 100

// Snapper decides whether each edge of a rectangle clamps onto the
// corresponding working-area edge.
type Snapper struct {
	Threshold int
}

// NewSnapper returns a Snapper with the default threshold.
func NewSnapper() *Snapper {
	return &Snapper{Threshold: DefaultThreshold}
}

// Snap returns the adjusted top-left position for rect within workArea.
//
// All four edges are checked independently and unconditionally, so a
// rectangle near a corner snaps on both axes in one call. An edge strictly
// within the threshold of the boundary is clamped exactly onto it; an edge
// already flush with the boundary is left untouched. Right and bottom
// clamps recompute the position from the rectangle's extent so that the far
// edge touches the working-area's far edge.
func (s *Snapper) Snap(rect, workArea Rect) Point {
	pos := Point{X: rect.Left, Y: rect.Top}

	if d := rect.Left - workArea.Left; d > 0 && d <= s.Threshold {
		pos.X = workArea.Left
	}

	if d := rect.Top - workArea.Top; d > 0 && d <= s.Threshold {
		pos.Y = workArea.Top
	}

	if d := workArea.Right - rect.Right; d > 0 && d <= s.Threshold {
		pos.X = workArea.Right - rect.Width()
	}

	if d := workArea.Bottom - rect.Bottom; d > 0 && d <= s.Threshold {
		pos.Y = workArea.Bottom - rect.Height()
	}

	return pos
}

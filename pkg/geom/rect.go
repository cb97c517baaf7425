// Package geom provides the axis-aligned rectangle used throughout placement.
//
// Coordinates are projected screen units with y growing downwards, the same
// space the map topology is drawn in.
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Rect is an axis-aligned rectangle. It is a comparable value, so it can be
// used directly as a map key when deduplicating rectangles by their bounds.
type Rect struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// FromCenter returns a w×h rectangle centered on (cx, cy).
func FromCenter(cx, cy, w, h float64) Rect {
	return Rect{
		MinX: cx - w/2,
		MaxX: cx + w/2,
		MinY: cy - h/2,
		MaxY: cy + h/2,
	}
}

// FromBound converts an orb bound into a Rect.
func FromBound(b orb.Bound) Rect {
	return Rect{MinX: b.Min[0], MaxX: b.Max[0], MinY: b.Min[1], MaxY: b.Max[1]}
}

// Bound converts r into an orb bound.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{r.MinX, r.MinY}, Max: orb.Point{r.MaxX, r.MaxY}}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() orb.Point {
	return orb.Point{r.MinX + r.Width()/2, r.MinY + r.Height()/2}
}

// Distance returns the Euclidean distance between the centers of r and o.
func (r Rect) Distance(o Rect) float64 {
	a, b := r.Center(), o.Center()
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Gap returns the Euclidean distance between the closest points of r and o.
// Overlapping or touching rectangles have a gap of zero.
func (r Rect) Gap(o Rect) float64 {
	dx := max(0, max(o.MinX-r.MaxX, r.MinX-o.MaxX))
	dy := max(0, max(o.MinY-r.MaxY, r.MinY-o.MaxY))
	return math.Hypot(dx, dy)
}

// Pad grows r by dx on the left and right and by dy on the top and bottom.
func (r Rect) Pad(dx, dy float64) Rect {
	return Rect{
		MinX: r.MinX - dx,
		MaxX: r.MaxX + dx,
		MinY: r.MinY - dy,
		MaxY: r.MaxY + dy,
	}
}

// Shrink moves every edge of r inwards by eps.
func (r Rect) Shrink(eps float64) Rect {
	return r.Pad(-eps, -eps)
}

// Intersects reports whether r and o share at least one point. Rectangles
// that only touch along an edge intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Overlaps reports whether r and o share a region of positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX &&
		r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Contains reports whether the point (x, y) lies inside r or on its border.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// IsFinite reports whether every bound of r is a finite number.
func (r Rect) IsFinite() bool {
	for _, v := range [...]float64{r.MinX, r.MaxX, r.MinY, r.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

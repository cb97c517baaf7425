package placement

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/labelmap/pkg/geom"
)

// Position is the placed rectangle of an item in the layout's coordinate
// space. (X, Y) is the top-left corner.
//
// For labels H is the height of the name line and TH the total height
// including the caption line, which starts at Y+H and is CW wide and CH
// tall. For images H and TH are equal and CW, CH are zero.
type Position struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
	CW float64 `json:"cw,omitempty"`
	CH float64 `json:"ch,omitempty"`
	TH float64 `json:"th"`
}

// Rect returns the full rectangle covered by the position.
func (p Position) Rect() geom.Rect {
	return geom.Rect{MinX: p.X, MaxX: p.X + p.W, MinY: p.Y, MaxY: p.Y + p.TH}
}

// CaptionOrigin returns the top-left corner of the caption line.
func (p Position) CaptionOrigin() orb.Point {
	return orb.Point{p.X, p.Y + p.H}
}

// Geometry is one placed item. Geometries are never modified once emitted.
type Geometry struct {
	ID      string
	Kind    Kind
	Anchor  orb.Point
	Pos     Position
	Content Content
	Color   string
	URL     string
}

// Rect returns the unpadded rectangle of the item.
func (g Geometry) Rect() geom.Rect {
	return g.Pos.Rect()
}

package index

import (
	"github.com/peterstace/simplefeatures/rtree"

	"github.com/matzehuels/labelmap/pkg/geom"
)

// HitIndex is an immutable spatial index over a fixed list of rectangles.
// Once built it is safe for concurrent use by multiple goroutines.
type HitIndex struct {
	tree *rtree.RTree
	n    int
}

// NewHitIndex bulk-loads rects. Query results refer to positions in rects.
func NewHitIndex(rects []geom.Rect) *HitIndex {
	items := make([]rtree.BulkItem, len(rects))
	for i, r := range rects {
		items[i] = rtree.BulkItem{Box: toBox(r), RecordID: i}
	}
	return &HitIndex{tree: rtree.BulkLoad(items), n: len(rects)}
}

// QueryPoint returns the positions of all rectangles containing (x, y), in
// ascending insertion order.
func (h *HitIndex) QueryPoint(x, y float64) []int {
	return h.QueryRect(geom.Rect{MinX: x, MaxX: x, MinY: y, MaxY: y})
}

// QueryRect returns the positions of all rectangles intersecting q, in
// ascending insertion order.
func (h *HitIndex) QueryRect(q geom.Rect) []int {
	if h.n == 0 {
		return nil
	}
	return collect(h.tree, q)
}

// Len returns the number of indexed rectangles.
func (h *HitIndex) Len() int { return h.n }

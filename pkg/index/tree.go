package index

import (
	"slices"

	"github.com/peterstace/simplefeatures/rtree"

	"github.com/matzehuels/labelmap/pkg/geom"
)

// Tree is a dynamic R-tree over rectangles supporting interleaved insertion
// and search. It is not safe for concurrent use.
type Tree struct {
	tree  *rtree.RTree
	rects []geom.Rect
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{tree: &rtree.RTree{}}
}

// Insert adds r to the tree.
func (t *Tree) Insert(r geom.Rect) {
	t.tree.Insert(toBox(r), len(t.rects))
	t.rects = append(t.rects, r)
}

// Search returns every stored rectangle that intersects q, touching edges
// included. Results are ordered by insertion so that callers iterating over
// them behave deterministically.
func (t *Tree) Search(q geom.Rect) []geom.Rect {
	if len(t.rects) == 0 {
		return nil
	}
	ids := collect(t.tree, q)
	out := make([]geom.Rect, len(ids))
	for i, id := range ids {
		out[i] = t.rects[id]
	}
	return out
}

// Len returns the number of stored rectangles.
func (t *Tree) Len() int { return len(t.rects) }

// Rects returns a copy of the stored rectangles in insertion order.
func (t *Tree) Rects() []geom.Rect { return slices.Clone(t.rects) }

func collect(t *rtree.RTree, q geom.Rect) []int {
	var ids []int
	_ = t.RangeSearch(toBox(q), func(id int) error {
		ids = append(ids, id)
		return nil
	})
	slices.Sort(ids)
	return ids
}

func toBox(r geom.Rect) rtree.Box {
	return rtree.Box{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY}
}

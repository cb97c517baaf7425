package topology

import (
	"github.com/matzehuels/labelmap/pkg/geom"
	"github.com/matzehuels/labelmap/pkg/index"
)

// HitIndex returns the read-only spatial index over the placed objects. It
// is built on first use.
func (a *Artifact) HitIndex() *index.HitIndex {
	a.hitOnce.Do(func() {
		rects := make([]geom.Rect, len(a.objects))
		for i, o := range a.objects {
			rects[i] = o.Rect()
		}
		a.hit = index.NewHitIndex(rects)
	})
	return a.hit
}

// Hit returns the objects under the point (x, y) in collection order.
func (a *Artifact) Hit(x, y float64) []Object {
	return a.pick(a.HitIndex().QueryPoint(x, y))
}

// Top returns the first object under (x, y), if any.
func (a *Artifact) Top(x, y float64) (Object, bool) {
	hits := a.HitIndex().QueryPoint(x, y)
	if len(hits) == 0 {
		return Object{}, false
	}
	return a.objects[hits[0]], true
}

// Frame returns the objects intersecting r in collection order, for drawing
// only what is visible.
func (a *Artifact) Frame(r geom.Rect) []Object {
	return a.pick(a.HitIndex().QueryRect(r))
}

func (a *Artifact) pick(ids []int) []Object {
	out := make([]Object, len(ids))
	for i, id := range ids {
		out[i] = a.objects[id]
	}
	return out
}

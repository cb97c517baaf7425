// Package index provides the two spatial indexes used around a layout run.
//
// [Tree] is the mutable collision index the placement engine owns for the
// duration of one run. Rectangles are inserted one at a time as items are
// accepted, and searched between insertions. It never shrinks.
//
// [HitIndex] is built once, in bulk, from the rectangles of a finished
// layout. It is read-only and answers point and viewport queries for
// pointer interaction, returning item positions in insertion order so the
// caller can pick the top-most match first.
//
// Both are backed by the R-tree from github.com/peterstace/simplefeatures.
// The module is held at v0.43.0, the last release whose rtree supports
// incremental Insert alongside BulkLoad.
package index

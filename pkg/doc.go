// Package pkg provides the libraries behind labelmap, which places map labels
// and images without overlaps.
//
// # Overview
//
// labelmap takes a TopoJSON base map plus two GeoJSON collections of
// placement requests (labels and images), positions every request near its
// anchor so that nothing overlaps, and writes the base map back with the
// placed objects added as a new collection. A renderer draws straight from
// that artifact; hit-testing over it maps clicks to objects and their links.
//
// # Architecture
//
//	TopoJSON base map    labels.geojson    images.geojson
//	         ↓                  ↓                 ↓
//	    [topology]             [io] (schema-validated requests)
//	         ↓                  ↓
//	         ↓             [placement] ← [scale], [measure], [index]
//	         ↓                  ↓
//	         └──────→ [topology.Merge] → artifact → [topology] hit-testing
//
// [pipeline] wires these together behind a content-addressed [cache].
//
// # Quick Start
//
//	base, _ := io.ImportTopology("us.topo.json")
//	labels, _ := io.ImportLabels("labels.geojson")
//
//	cfg := placement.DefaultConfig(scale.Options{"b": 1, "m": 2, "q": 0.25})
//	engine, _ := placement.New(cfg, measure.NewBasicMeasurer(), measure.NewDirImages("imgs"))
//	res, _ := engine.Run(ctx, nil, labels)
//
//	art := topology.Merge(base, "objs", res.Placed)
//	obj, ok := art.Top(412, 188)
//
// # Main Packages
//
// ## Placement
//
// [placement] - Places images at their anchors, then labels in priority
// order by breadth-first search around the colliders in their way. Labels
// of low priority that land too far from their anchor are discarded.
//
// [scale] - Resolves a label's height from its raw scale and category- or
// id-specific options, snapped to a quantum.
//
// [index] - R-tree indexes: a mutable one used during placement and a
// bulk-loaded read-only one for hit-testing.
//
// [geom] - Axis-aligned rectangles and the distance and overlap math on
// them.
//
// [measure] - Text widths from font faces and image sizes from a
// directory, an HTTP base URL or a static table.
//
// ## Data
//
// [topology] - TopoJSON pass-through, the artifact format and hit-testing.
//
// [io] - Reading request collections and writing artifacts.
//
// ## Infrastructure
//
// [pipeline] - Load, place, merge and cache a run. Used by every CLI command
// that produces an artifact.
//
// [cache] - File, Redis and null caches with content-hash keys.
//
// [config] - TOML/YAML configuration, environment and --set overrides.
//
// [httputil] - Size-limited fetches with retry and backoff.
//
// [observability] - Hooks for placement, cache and HTTP events.
//
// [errors] - Coded errors shared by all packages.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/placement/...   # Specific package
//	go test -run Example ./...    # Examples only
//
// [placement]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/placement
// [scale]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/scale
// [index]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/index
// [geom]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/geom
// [measure]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/measure
// [topology]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/topology
// [io]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/buildinfo
//
// [topology.Merge]: https://pkg.go.dev/github.com/matzehuels/labelmap/pkg/topology#Merge
package pkg

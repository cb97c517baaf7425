package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/geom"
	"github.com/matzehuels/labelmap/pkg/index"
	"github.com/matzehuels/labelmap/pkg/placement"
)

// Defaults for [Merge].
const (
	DefaultCollection = "objs"
	DefaultPrecision  = 3
)

// Object is one placed item as stored in the artifact.
type Object struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Coordinates [2]float64 `json:"coordinates"`
	Properties  Properties `json:"properties"`
}

// Properties carry what a renderer needs to draw and link an object.
type Properties struct {
	Kind    string             `json:"kind"`
	Name    string             `json:"name,omitempty"`
	Caption string             `json:"caption,omitempty"`
	Color   string             `json:"color,omitempty"`
	URL     string             `json:"url,omitempty"`
	Pos     placement.Position `json:"pos"`
}

// Rect returns the area the object covers on the map.
func (o Object) Rect() geom.Rect {
	return o.Properties.Pos.Rect()
}

type collection struct {
	Type       string   `json:"type"`
	Geometries []Object `json:"geometries"`
}

// Artifact is a base topology merged with the placed objects. It is never
// modified after construction and is safe for concurrent readers.
type Artifact struct {
	base    *Topology
	name    string
	objects []Object

	hitOnce sync.Once
	hit     *index.HitIndex
}

type mergeOptions struct {
	precision int
}

// MergeOption configures [Merge].
type MergeOption func(*mergeOptions)

// WithPrecision rounds every number of the placed objects to n decimals.
// A negative n disables rounding.
func WithPrecision(n int) MergeOption {
	return func(o *mergeOptions) { o.precision = n }
}

// Merge builds an artifact from base and the placed geometries, in the order
// given. The object collection is stored under name, or "objs" if name is
// empty. An existing object of that name is replaced.
func Merge(base *Topology, name string, placed []placement.Geometry, opts ...MergeOption) *Artifact {
	o := mergeOptions{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		name = DefaultCollection
	}
	if base == nil {
		base = &Topology{Type: TypeTopology}
	}

	objects := make([]Object, len(placed))
	for i, g := range placed {
		objects[i] = newObject(g, o.precision)
	}
	return &Artifact{base: base.Clone(), name: name, objects: objects}
}

func newObject(g placement.Geometry, precision int) Object {
	r := func(v float64) float64 { return roundTo(v, precision) }
	p := g.Pos
	return Object{
		Type:        "Point",
		ID:          g.ID,
		Coordinates: [2]float64{r(g.Anchor[0]), r(g.Anchor[1])},
		Properties: Properties{
			Kind:    g.Kind.String(),
			Name:    g.Content.Name,
			Caption: g.Content.Caption,
			Color:   g.Color,
			URL:     g.URL,
			Pos: placement.Position{
				X: r(p.X), Y: r(p.Y),
				W: r(p.W), H: r(p.H),
				CW: r(p.CW), CH: r(p.CH),
				TH: r(p.TH),
			},
		},
	}
}

func roundTo(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	f := math.Pow10(precision)
	v = math.Round(v*f) / f
	if v == 0 {
		return 0 // drop the sign of -0
	}
	return v
}

// Name returns the name of the object collection.
func (a *Artifact) Name() string { return a.name }

// Base returns the topology the artifact was merged into. Callers must not
// modify it.
func (a *Artifact) Base() *Topology { return a.base }

// Objects returns a copy of the placed objects in collection order.
func (a *Artifact) Objects() []Object {
	out := make([]Object, len(a.objects))
	copy(out, a.objects)
	return out
}

// Len returns the number of placed objects.
func (a *Artifact) Len() int { return len(a.objects) }

// Count returns the number of objects of the given kind.
func (a *Artifact) Count(kind placement.Kind) int {
	n := 0
	for _, o := range a.objects {
		if o.Properties.Kind == kind.String() {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the merged TopoJSON document.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	coll, err := json.Marshal(collection{Type: "GeometryCollection", Geometries: a.objects})
	if err != nil {
		return nil, err
	}
	doc := a.base.Clone()
	doc.Objects[a.name] = coll
	return json.Marshal(doc)
}

// WriteTo writes the artifact as JSON to w.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	data, err := a.MarshalJSON()
	if err != nil {
		return 0, fmt.Errorf("encode artifact: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Decode parses an artifact previously produced by [Artifact.MarshalJSON].
// The object collection is looked up by name, or "objs" if name is empty.
func Decode(data []byte, name string) (*Artifact, error) {
	if name == "" {
		name = DefaultCollection
	}
	var doc Topology
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode artifact")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	raw, ok := doc.Objects[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "artifact has no %q collection", name)
	}
	var coll collection
	if err := json.Unmarshal(raw, &coll); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %q collection", name)
	}
	delete(doc.Objects, name)
	return &Artifact{base: &doc, name: name, objects: coll.Geometries}, nil
}

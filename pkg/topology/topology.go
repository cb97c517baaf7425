package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/matzehuels/labelmap/pkg/errors"
)

// TypeTopology is the only accepted value of a document's "type" member.
const TypeTopology = "Topology"

// Topology is a TopoJSON document. Arcs, transform, bbox and every object
// are kept as raw JSON so that they are written back byte for byte.
// Unknown top-level members are preserved as well.
type Topology struct {
	Type      string
	BBox      json.RawMessage
	Transform json.RawMessage
	Arcs      json.RawMessage
	Objects   map[string]json.RawMessage
	Foreign   map[string]json.RawMessage
}

// Clone returns a copy of t whose maps can be modified independently.
// The raw members are shared; they are never written to.
func (t *Topology) Clone() *Topology {
	c := *t
	c.Objects = maps.Clone(t.Objects)
	c.Foreign = maps.Clone(t.Foreign)
	if c.Objects == nil {
		c.Objects = make(map[string]json.RawMessage)
	}
	return &c
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Topology) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*t = Topology{Objects: make(map[string]json.RawMessage)}

	if raw, ok := members["type"]; ok {
		if err := json.Unmarshal(raw, &t.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	}
	if raw, ok := members["objects"]; ok {
		if err := json.Unmarshal(raw, &t.Objects); err != nil {
			return fmt.Errorf("objects: %w", err)
		}
	}
	t.BBox = members["bbox"]
	t.Transform = members["transform"]
	t.Arcs = members["arcs"]

	for _, k := range []string{"type", "objects", "bbox", "transform", "arcs"} {
		delete(members, k)
	}
	if len(members) > 0 {
		t.Foreign = members
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t *Topology) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Foreign)+5)
	for k, v := range t.Foreign {
		out[k] = v
	}
	out["type"] = t.Type
	out["objects"] = t.Objects
	if t.Objects == nil {
		out["objects"] = map[string]json.RawMessage{}
	}
	out["arcs"] = t.Arcs
	if t.Arcs == nil {
		out["arcs"] = []any{}
	}
	if t.BBox != nil {
		out["bbox"] = t.BBox
	}
	if t.Transform != nil {
		out["transform"] = t.Transform
	}
	return json.Marshal(out)
}

// Validate checks the members a renderer relies on.
func (t *Topology) Validate() error {
	if t.Type != TypeTopology {
		return errors.New(errors.ErrCodeInvalidFormat, "expected type %q, got %q", TypeTopology, t.Type)
	}
	return nil
}

// ReadTopology decodes and validates a TopoJSON document from r.
func ReadTopology(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode topology")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

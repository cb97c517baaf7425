package io

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/topology"
)

var (
	//go:embed schema/labels.schema.json
	labelsSchema []byte

	//go:embed schema/images.schema.json
	imagesSchema []byte
)

// ReadLabels decodes label requests from a GeoJSON FeatureCollection.
// Requests are returned in document order.
func ReadLabels(r io.Reader) ([]placement.Request, error) {
	fc, err := decode(r, labelsSchema, "labels")
	if err != nil {
		return nil, err
	}

	out := make([]placement.Request, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		id := featureID(f)
		anchor, err := point(f, id, i)
		if err != nil {
			return nil, err
		}
		p := f.Properties
		out = append(out, placement.Request{
			ID:     id,
			Kind:   placement.KindLabel,
			Anchor: anchor,
			Content: placement.Content{
				Name:    p.MustString("name", ""),
				Caption: p.MustString("caption", ""),
			},
			Color:    p.MustString("color", ""),
			URL:      p.MustString("url", ""),
			RawScale: p.MustFloat64("scale", 0),
			Weight:   p.MustFloat64("length", 0),
			IsTop:    p.MustBool("isTop", false),
		})
	}
	return out, nil
}

// ReadImages decodes image requests from a GeoJSON FeatureCollection.
func ReadImages(r io.Reader) ([]placement.Request, error) {
	fc, err := decode(r, imagesSchema, "images")
	if err != nil {
		return nil, err
	}

	out := make([]placement.Request, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name := f.Properties.MustString("name", "")
		anchor, err := point(f, name, i)
		if err != nil {
			return nil, err
		}
		req := placement.NewImage(name, anchor)
		req.URL = f.Properties.MustString("url", "")
		out = append(out, req)
	}
	return out, nil
}

func decode(r io.Reader, schema []byte, what string) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", what, err)
	}
	if err := validate(schema, data, what); err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", what)
	}
	return fc, nil
}

func validate(schema, data []byte, what string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s are not valid JSON", what)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		msgs[i] = e.String()
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s: %s", what, strings.Join(msgs, "; "))
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func point(f *geojson.Feature, id string, i int) (orb.Point, error) {
	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return orb.Point{}, errors.New(errors.ErrCodeInvalidInput,
			"feature %d (%s): expected a Point, got %s", i, id, f.Geometry.GeoJSONType())
	}
	return p, nil
}

// ImportLabels reads label requests from the GeoJSON file at path.
func ImportLabels(path string) ([]placement.Request, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ReadLabels(bytes.NewReader(data))
}

// ImportImages reads image requests from the GeoJSON file at path.
func ImportImages(path string) ([]placement.Request, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ReadImages(bytes.NewReader(data))
}

// ImportTopology reads the TopoJSON base map at path.
func ImportTopology(path string) (*topology.Topology, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return topology.ReadTopology(bytes.NewReader(data))
}

// ImportArtifact reads a merged artifact whose object collection is called
// name ("objs" when empty).
func ImportArtifact(path, name string) (*topology.Artifact, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return topology.Decode(data, name)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

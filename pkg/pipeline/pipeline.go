// Package pipeline runs the full labelmap flow: read the base map and the
// placement requests, place them, merge the result into an artifact and
// cache it.
//
// # Overview
//
// A run takes three inputs:
//
//  1. A TopoJSON base map, passed through untouched
//  2. A GeoJSON collection of label requests
//  3. An optional GeoJSON collection of image requests
//
// and produces a [topology.Artifact]. The artifact is cached under a key
// derived from the raw input bytes and every setting that can change the
// output, so a repeated run with identical inputs skips placement.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	in, err := pipeline.LoadInputs("map.topo.json", "labels.geojson", "images.geojson")
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, in, pipeline.Options{
//	    Layout: cfg.Layout,
//	    Text:   measure.NewBasicMeasurer(),
//	    Images: measure.NewDirImages("imgs"),
//	})
//
// [Compute] is the uncached core of [Runner.Execute] and has no side effects
// beyond the measurers it is given.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/config"
	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/io"
	"github.com/matzehuels/labelmap/pkg/measure"
	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/topology"
)

// Identifiers for the measurers, used in cache keys.
const (
	MeasurerBasic = "basic"
	ImagesNone    = "none"
)

// Inputs holds the raw bytes of a run. Images may be empty.
type Inputs struct {
	Topology []byte
	Labels   []byte
	Images   []byte
}

// LoadInputs reads the input files. imagesPath may be empty.
func LoadInputs(topologyPath, labelsPath, imagesPath string) (Inputs, error) {
	var in Inputs
	var err error
	if in.Topology, err = readInput(topologyPath, "topology"); err != nil {
		return Inputs{}, err
	}
	if in.Labels, err = readInput(labelsPath, "labels"); err != nil {
		return Inputs{}, err
	}
	if imagesPath != "" {
		if in.Images, err = readInput(imagesPath, "images"); err != nil {
			return Inputs{}, err
		}
	}
	return in, nil
}

func readInput(path, what string) ([]byte, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s file is required", what)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s file %s", what, path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s file", what)
	}
	return data, nil
}

// Hash returns the content hash of the inputs.
func (in Inputs) Hash() string {
	return cache.HashAll(in.Topology, in.Labels, in.Images)
}

// Options configures a run.
type Options struct {
	// Layout holds the placement settings, the collection name and the
	// output precision.
	Layout config.Layout

	Text   measure.TextMeasurer
	Images measure.ImageMetrics

	// MeasurerID and ImagesID identify Text and Images in the cache key.
	// They default to [MeasurerBasic] and [ImagesNone].
	MeasurerID string
	ImagesID   string

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool
}

// Result is the outcome of a run.
type Result struct {
	// RunID identifies the run in logs.
	RunID    string
	Artifact *topology.Artifact
	// Data is the encoded artifact.
	Data      []byte
	Discarded []placement.Discard
	Stats     Stats
	CacheHit  bool
}

// Stats contains run statistics.
type Stats struct {
	Images     int
	Labels     int
	Discarded  int
	LayoutTime time.Duration
}

// Validate checks the options and returns the engine configuration.
func (o *Options) Validate() (placement.Config, error) {
	pc, err := config.Config{Layout: o.Layout}.Placement()
	if err != nil {
		return placement.Config{}, err
	}
	if o.Text == nil {
		return placement.Config{}, errors.New(errors.ErrCodeInvalidInput, "a text measurer is required")
	}
	if o.Images == nil {
		return placement.Config{}, errors.New(errors.ErrCodeInvalidInput, "image metrics are required")
	}
	if o.Layout.Precision > 15 {
		return placement.Config{}, errors.InvalidConfiguration("precision %d is too large", o.Layout.Precision)
	}
	return pc, nil
}

// SetDefaults fills empty identifiers and the collection name.
func (o *Options) SetDefaults() {
	if o.MeasurerID == "" {
		o.MeasurerID = MeasurerBasic
	}
	if o.ImagesID == "" {
		o.ImagesID = ImagesNone
	}
	if o.Layout.Collection == "" {
		o.Layout.Collection = topology.DefaultCollection
	}
}

// keyOpts returns the cache key options. The layout hash covers every
// setting that changes the artifact.
func (o *Options) keyOpts() cache.LayoutKeyOpts {
	data, _ := json.Marshal(o.Layout)
	return cache.LayoutKeyOpts{
		ConfigHash: cache.Hash(data),
		Measurer:   o.MeasurerID,
		Images:     o.ImagesID,
		Collection: o.Layout.Collection,
		Precision:  o.Layout.Precision,
	}
}

// Compute parses the inputs, places every request and merges the result
// into an artifact. It does not touch any cache.
func Compute(ctx context.Context, in Inputs, opts Options, engineOpts ...placement.Option) (*topology.Artifact, *placement.Result, error) {
	opts.SetDefaults()
	pc, err := opts.Validate()
	if err != nil {
		return nil, nil, err
	}

	base, labels, images, err := parse(in)
	if err != nil {
		return nil, nil, err
	}

	engine, err := placement.New(pc, opts.Text, opts.Images, engineOpts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.Run(ctx, images, labels)
	if err != nil {
		return nil, nil, err
	}

	art := topology.Merge(base, opts.Layout.Collection, res.Placed, topology.WithPrecision(opts.Layout.Precision))
	return art, res, nil
}

func parse(in Inputs) (*topology.Topology, []placement.Request, []placement.Request, error) {
	base, err := topology.ReadTopology(bytes.NewReader(in.Topology))
	if err != nil {
		return nil, nil, nil, err
	}
	labels, err := io.ReadLabels(bytes.NewReader(in.Labels))
	if err != nil {
		return nil, nil, nil, err
	}
	var images []placement.Request
	if len(bytes.TrimSpace(in.Images)) > 0 {
		if images, err = io.ReadImages(bytes.NewReader(in.Images)); err != nil {
			return nil, nil, nil, err
		}
	}
	return base, labels, images, nil
}

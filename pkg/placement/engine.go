package placement

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gammazero/deque"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/geom"
	"github.com/matzehuels/labelmap/pkg/index"
	"github.com/matzehuels/labelmap/pkg/measure"
	"github.com/matzehuels/labelmap/pkg/observability"
	"github.com/matzehuels/labelmap/pkg/scale"
)

// Engine places requests. An Engine holds no per-run state and may be used
// for several sequential or concurrent runs.
type Engine struct {
	cfg    Config
	text   measure.TextMeasurer
	images measure.ImageMetrics
	logger *log.Logger
	hooks  observability.PipelineHooks
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run summaries and discards.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks overrides the globally registered pipeline hooks.
func WithHooks(h observability.PipelineHooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// New validates cfg and returns an engine that measures with text and
// images.
func New(cfg Config, text measure.TextMeasurer, images measure.ImageMetrics, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if text == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a text measurer is required")
	}
	if images == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image metrics are required")
	}
	e := &Engine{
		cfg:    cfg,
		text:   text,
		images: images,
		logger: log.New(io.Discard),
		hooks:  observability.Pipeline(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Discard records a label dropped by the discard rule.
type Discard struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// Result is the outcome of a run.
type Result struct {
	// Placed holds images in input order followed by labels in processing
	// order.
	Placed    []Geometry
	Discarded []Discard
	Images    int
	Labels    int
}

// Layout runs a single placement with a fresh engine.
func Layout(ctx context.Context, cfg Config, text measure.TextMeasurer, images measure.ImageMetrics,
	imageReqs, labelReqs []Request) ([]Geometry, error) {
	e, err := New(cfg, text, images)
	if err != nil {
		return nil, err
	}
	res, err := e.Run(ctx, imageReqs, labelReqs)
	if err != nil {
		return nil, err
	}
	return res.Placed, nil
}

// Run places images then labels. On error no result is returned.
func (e *Engine) Run(ctx context.Context, images, labels []Request) (*Result, error) {
	start := time.Now()
	e.hooks.OnLayoutStart(ctx, len(images)+len(labels))

	res, err := e.run(ctx, images, labels)
	if err != nil {
		e.hooks.OnLayoutComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	e.hooks.OnLayoutComplete(ctx, len(res.Placed), len(res.Discarded), time.Since(start), nil)
	e.logger.Info("layout complete",
		"images", res.Images,
		"labels", res.Labels,
		"discarded", len(res.Discarded),
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// pending is a label whose height has been resolved.
type pending struct {
	Request
	index  int
	tier   int
	height float64
}

func (e *Engine) run(ctx context.Context, images, labels []Request) (*Result, error) {
	queue, err := e.order(labels)
	if err != nil {
		return nil, err
	}

	tree := index.NewTree()
	res := &Result{Placed: make([]Geometry, 0, len(images)+len(labels))}

	for _, r := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := e.placeImage(ctx, tree, r)
		if err != nil {
			return nil, err
		}
		res.Placed = append(res.Placed, g)
		res.Images++
	}

	for _, p := range queue {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, ok, dist, err := e.placeLabel(ctx, tree, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logger.Debug("label discarded", "id", p.ID, "distance", dist)
			e.hooks.OnLabelDiscarded(ctx, p.ID, dist)
			res.Discarded = append(res.Discarded, Discard{ID: p.ID, Distance: dist})
			continue
		}
		res.Placed = append(res.Placed, g)
		res.Labels++
	}
	return res, nil
}

// order resolves label heights and sorts labels by tier, then height and
// weight descending, then input position.
func (e *Engine) order(labels []Request) ([]pending, error) {
	out := make([]pending, len(labels))
	for i, r := range labels {
		h, err := scale.Size(e.cfg.Scale, r.ID, r.RawScale)
		if err != nil {
			return nil, err
		}
		out[i] = pending{Request: r, index: i, tier: e.cfg.Tiers.Of(r.Category()), height: h}
	}
	slices.SortFunc(out, func(a, b pending) int {
		return cmp.Or(
			cmp.Compare(a.tier, b.tier),
			cmp.Compare(b.height, a.height),
			cmp.Compare(b.Weight, a.Weight),
			cmp.Compare(a.index, b.index),
		)
	})
	return out, nil
}

func (e *Engine) placeImage(ctx context.Context, tree *index.Tree, r Request) (Geometry, error) {
	size, err := e.images.ImageSize(ctx, r.Content.Name)
	if err != nil {
		return Geometry{}, fmt.Errorf("image %s: %w", r.Content.Name, err)
	}
	w, h := e.cfg.ImgScale*size.Width, e.cfg.ImgScale*size.Height
	rect := geom.FromCenter(r.Anchor[0], r.Anchor[1], w, h)

	spacing := e.cfg.SpacingFactor * h
	tree.Insert(rect.Pad(2*spacing, spacing))

	return Geometry{
		ID:      r.ID,
		Kind:    KindImage,
		Anchor:  r.Anchor,
		Pos:     Position{X: rect.MinX, Y: rect.MinY, W: w, H: h, TH: h},
		Content: r.Content,
		Color:   r.Color,
		URL:     r.URL,
	}, nil
}

// placeLabel returns ok=false with the discard distance when the label is
// dropped.
func (e *Engine) placeLabel(ctx context.Context, tree *index.Tree, p pending) (Geometry, bool, float64, error) {
	h := p.height
	nameW, err := e.text.MeasureText(ctx, p.Content.Name, h)
	if err != nil {
		return Geometry{}, false, 0, fmt.Errorf("measure %s: %w", p.ID, err)
	}

	total := h
	var capW, capH float64
	if p.Content.Caption != "" {
		capH = h / 3
		total += capH
		if capW, err = e.text.MeasureText(ctx, p.Content.Caption, capH); err != nil {
			return Geometry{}, false, 0, fmt.Errorf("measure caption of %s: %w", p.ID, err)
		}
	}
	w := max(nameW, capW)

	x, y := p.Anchor[0], p.Anchor[1]
	ideal := geom.Rect{
		MinX: x - w/2,
		MaxX: x + w/2,
		MinY: y - h/2,
		MaxY: y + h/2 + (total - h),
	}

	chosen, found := e.search(tree, ideal, w, total)
	discardable := e.cfg.discardable(p.Request)
	if !found {
		if discardable {
			return Geometry{}, false, math.Inf(1), nil
		}
		// Unreachable while the tree is consistent: each right-hand candidate
		// starts past the collider that spawned it, so the chain of right
		// candidates ends at a free position.
		return Geometry{}, false, 0, errors.PlacementExhausted(p.ID)
	}
	if dist := e.cfg.discardDistance(ideal, chosen); discardable && dist > e.cfg.DistanceDiscardThreshold {
		return Geometry{}, false, dist, nil
	}

	spacing := e.cfg.SpacingFactor * total
	tree.Insert(chosen.Pad(2*spacing, spacing))

	return Geometry{
		ID:     p.ID,
		Kind:   KindLabel,
		Anchor: p.Anchor,
		Pos: Position{
			X: chosen.MinX, Y: chosen.MinY,
			W: w, H: h,
			CW: capW, CH: capH,
			TH: total,
		},
		Content: p.Content,
		Color:   p.Color,
		URL:     p.URL,
	}, true, 0, nil
}

// search returns the free candidate closest to ideal. Candidates are
// explored breadth first; each newly met collider spawns four candidates of
// the ideal's size flush against its edges.
func (e *Engine) search(tree *index.Tree, ideal geom.Rect, w, total float64) (geom.Rect, bool) {
	var queue deque.Deque[geom.Rect]
	queue.PushBack(ideal)
	seen := make(map[geom.Rect]struct{})

	var best geom.Rect
	bestDist := math.Inf(1)
	found := false

	for queue.Len() > 0 {
		cand := queue.PopFront()
		dist := ideal.Distance(cand)
		if dist > bestDist {
			continue
		}

		colliders := tree.Search(cand.Shrink(e.cfg.Epsilon))
		if len(colliders) == 0 {
			if !found || dist < bestDist {
				best, bestDist, found = cand, dist, true
			}
			continue
		}

		for _, c := range colliders {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}

			queue.PushBack(geom.Rect{MinX: ideal.MinX, MaxX: ideal.MaxX, MinY: c.MinY - total, MaxY: c.MinY})
			queue.PushBack(geom.Rect{MinX: ideal.MinX, MaxX: ideal.MaxX, MinY: c.MaxY, MaxY: c.MaxY + total})
			queue.PushBack(geom.Rect{MinX: c.MinX - w, MaxX: c.MinX, MinY: ideal.MinY, MaxY: ideal.MaxY})
			queue.PushBack(geom.Rect{MinX: c.MaxX, MaxX: c.MaxX + w, MinY: ideal.MinY, MaxY: ideal.MaxY})
		}
	}
	return best, found
}

// Package measure provides the two measurement capabilities the placement
// engine depends on: the pixel width of a string rendered at a given height,
// and the intrinsic size of a named image.
//
// Both are blocking calls that take a context. The engine awaits each result
// before computing the rectangle that depends on it.
package measure

import "context"

// TextMeasurer returns the rendered width of text drawn at the given pixel
// height. Empty text has zero width.
type TextMeasurer interface {
	MeasureText(ctx context.Context, text string, height float64) (float64, error)
}

// ImageMetrics returns the intrinsic (natural) size of the image called name.
type ImageMetrics interface {
	ImageSize(ctx context.Context, name string) (Size, error)
}

// Size is an intrinsic image size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextFunc adapts a plain function to [TextMeasurer].
type TextFunc func(ctx context.Context, text string, height float64) (float64, error)

// MeasureText calls f.
func (f TextFunc) MeasureText(ctx context.Context, text string, height float64) (float64, error) {
	return f(ctx, text, height)
}

// ImageFunc adapts a plain function to [ImageMetrics].
type ImageFunc func(ctx context.Context, name string) (Size, error)

// ImageSize calls f.
func (f ImageFunc) ImageSize(ctx context.Context, name string) (Size, error) {
	return f(ctx, name)
}

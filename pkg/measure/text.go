package measure

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// referenceSize is the pixel size outline fonts are rasterised at before the
// measured width is scaled to the requested height. Measuring small text
// directly suffers from hinting and rounding of advances.
const referenceSize = 64

// FaceMeasurer measures text with a font face, scaling advances measured at
// the face's reference height to the requested height. Text is lowercased
// before measurement because the map font only has lowercase glyph shapes.
type FaceMeasurer struct {
	mu        sync.Mutex
	face      font.Face
	refHeight float64
	lowercase bool
}

// NewFaceMeasurer wraps face, whose glyphs are refHeight pixels tall.
func NewFaceMeasurer(face font.Face, refHeight float64, lowercase bool) *FaceMeasurer {
	return &FaceMeasurer{face: face, refHeight: refHeight, lowercase: lowercase}
}

// NewBasicMeasurer returns a deterministic measurer backed by the fixed
// 7x13 bitmap face. Every glyph is 7 units wide at a height of 13.
func NewBasicMeasurer() *FaceMeasurer {
	return NewFaceMeasurer(basicfont.Face7x13, 13, true)
}

// ParseFont builds a measurer from TrueType or OpenType font data.
func ParseFont(data []byte) (*FaceMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    referenceSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return NewFaceMeasurer(face, referenceSize, true), nil
}

// LoadFont reads a font file from path and builds a measurer from it.
func LoadFont(path string) (*FaceMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return ParseFont(data)
}

// MeasureText implements [TextMeasurer].
func (m *FaceMeasurer) MeasureText(ctx context.Context, text string, height float64) (float64, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.lowercase {
		text = strings.ToLower(text)
	}

	m.mu.Lock()
	adv := font.MeasureString(m.face, text)
	m.mu.Unlock()

	return float64(adv) / 64 * height / m.refHeight, nil
}

// AspectMeasurer is a font-free measurer that assumes every rune is Ratio
// times as wide as the text is tall.
type AspectMeasurer struct {
	Ratio float64
}

// MeasureText implements [TextMeasurer].
func (m AspectMeasurer) MeasureText(_ context.Context, text string, height float64) (float64, error) {
	return float64(len([]rune(text))) * m.Ratio * height, nil
}

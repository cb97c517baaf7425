package measure

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/labelmap/pkg/errors"
)

// DefaultImageExt is the file extension appended to image names.
const DefaultImageExt = ".png"

// DecodeSize reads only the image header from r and returns its size.
// PNG, JPEG, GIF, BMP and WebP are recognised.
func DecodeSize(r io.Reader) (Size, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return Size{}, err
	}
	return Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// DirImages reads image sizes from files named <Dir>/<name><Ext>.
type DirImages struct {
	Dir string
	Ext string
}

// NewDirImages returns metrics for PNG images stored in dir.
func NewDirImages(dir string) DirImages {
	return DirImages{Dir: dir, Ext: DefaultImageExt}
}

// ImageSize implements [ImageMetrics].
func (d DirImages) ImageSize(ctx context.Context, name string) (Size, error) {
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}
	ext := d.Ext
	if ext == "" {
		ext = DefaultImageExt
	}
	path := filepath.Join(d.Dir, name+ext)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Size{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", name)
	}
	if err != nil {
		return Size{}, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	size, err := DecodeSize(f)
	if err != nil {
		return Size{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %s", path)
	}
	return size, nil
}

// StaticImages serves sizes from a fixed table.
type StaticImages map[string]Size

// ImageSize implements [ImageMetrics].
func (s StaticImages) ImageSize(_ context.Context, name string) (Size, error) {
	size, ok := s[name]
	if !ok {
		return Size{}, errors.New(errors.ErrCodeNotFound, "no metrics for image %s", name)
	}
	return size, nil
}

func decodeBytes(name string, data []byte) (Size, error) {
	size, err := DecodeSize(bytes.NewReader(data))
	if err != nil {
		return Size{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %s", name)
	}
	return size, nil
}

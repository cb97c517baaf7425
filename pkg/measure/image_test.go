package measure

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDirImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lincoln.png"), encodePNG(t, 40, 20), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	imgs := NewDirImages(dir)
	ctx := context.Background()

	size, err := imgs.ImageSize(ctx, "lincoln")
	if err != nil {
		t.Fatalf("ImageSize: %v", err)
	}
	if size != (Size{Width: 40, Height: 20}) {
		t.Errorf("size = %+v, want 40x20", size)
	}

	if _, err := imgs.ImageSize(ctx, "missing"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing image: err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := imgs.ImageSize(ctx, "broken"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("broken image: err = %v, want INVALID_FORMAT", err)
	}
}

func TestStaticImages(t *testing.T) {
	imgs := StaticImages{"a": {Width: 3, Height: 4}}
	if got, _ := imgs.ImageSize(context.Background(), "a"); got.Width != 3 || got.Height != 4 {
		t.Errorf("ImageSize(a) = %+v", got)
	}
	if _, err := imgs.ImageSize(context.Background(), "b"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ImageSize(b) err = %v, want NOT_FOUND", err)
	}
}

func TestHTTPImages(t *testing.T) {
	img := encodePNG(t, 64, 32)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/imgs/washington.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	imgs := NewHTTPImages(srv.URL+"/", fc)
	imgs.Client = srv.Client()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		size, err := imgs.ImageSize(ctx, "washington")
		if err != nil {
			t.Fatalf("ImageSize: %v", err)
		}
		if size != (Size{Width: 64, Height: 32}) {
			t.Errorf("size = %+v, want 64x32", size)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (second lookup cached)", n)
	}

	if _, err := imgs.ImageSize(ctx, "adams"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing remote image: err = %v, want NOT_FOUND", err)
	}
}

func TestHTTPImagesRetriesServerErrors(t *testing.T) {
	img := encodePNG(t, 10, 5)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(img)
	}))
	defer srv.Close()

	imgs := NewHTTPImages(srv.URL, nil)
	imgs.Client = srv.Client()
	imgs.Backoff = errors.Backoff{Attempts: 3, Delay: time.Millisecond}

	size, err := imgs.ImageSize(context.Background(), "flag")
	if err != nil {
		t.Fatalf("ImageSize: %v", err)
	}
	if size != (Size{Width: 10, Height: 5}) || hits.Load() != 2 {
		t.Errorf("size = %+v after %d requests, want 10x5 after 2", size, hits.Load())
	}
}

func TestHTTPImagesURL(t *testing.T) {
	imgs := NewHTTPImages("https://maps.example/static", nil)
	if got, want := imgs.URL("new york"), "https://maps.example/static/imgs/new%20york.png"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

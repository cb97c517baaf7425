package measure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/httputil"
	"github.com/matzehuels/labelmap/pkg/observability"
)

// HTTPImages fetches images from <BaseURL>/imgs/<name><Ext> and reports their
// size. Dimensions are cached, the image bytes are not.
type HTTPImages struct {
	BaseURL string
	Ext     string
	Client  *http.Client
	Cache   cache.Cache
	Keyer   cache.Keyer
	Backoff errors.Backoff
}

// NewHTTPImages returns remote metrics rooted at baseURL. A nil cache
// disables caching.
func NewHTTPImages(baseURL string, c cache.Cache) *HTTPImages {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &HTTPImages{
		BaseURL: baseURL,
		Ext:     DefaultImageExt,
		Client:  httputil.DefaultClient,
		Cache:   c,
		Keyer:   cache.NewDefaultKeyer(),
		Backoff: errors.FetchBackoff,
	}
}

// URL returns the address an image is fetched from.
func (h *HTTPImages) URL(name string) string {
	ext := h.Ext
	if ext == "" {
		ext = DefaultImageExt
	}
	return strings.TrimSuffix(h.BaseURL, "/") + "/imgs/" + url.PathEscape(name+ext)
}

// ImageSize implements [ImageMetrics].
func (h *HTTPImages) ImageSize(ctx context.Context, name string) (Size, error) {
	key := h.Keyer.MetricsKey(h.BaseURL, name)

	if data, ok, err := h.Cache.Get(ctx, key); err == nil && ok {
		var size Size
		if json.Unmarshal(data, &size) == nil {
			observability.Cache().OnCacheHit(ctx, "metrics")
			return size, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "metrics")

	var body []byte
	err := errors.Retry(ctx, h.Backoff, func() (err error) {
		body, err = httputil.Fetch(ctx, h.Client, h.URL(name))
		return err
	})
	if err != nil {
		return Size{}, err
	}

	size, err := decodeBytes(name, body)
	if err != nil {
		return Size{}, err
	}
	if data, err := json.Marshal(size); err == nil {
		if h.Cache.Set(ctx, key, data, cache.TTLMetrics) == nil {
			observability.Cache().OnCacheSet(ctx, "metrics", len(data))
		}
	}
	return size, nil
}

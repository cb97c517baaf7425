package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/labelmap/pkg/config"
	"github.com/matzehuels/labelmap/pkg/errors"
	pkgio "github.com/matzehuels/labelmap/pkg/io"
	"github.com/matzehuels/labelmap/pkg/topology"
)

const (
	topoDoc   = `{"type":"Topology","arcs":[],"objects":{"land":{"type":"GeometryCollection","geometries":[]}}}`
	labelsDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","id":"City-A","geometry":{"type":"Point","coordinates":[100,100]},"properties":{"name":"Alpha","scale":1,"url":"https://example.org/a"}},
  {"type":"Feature","id":"State-B","geometry":{"type":"Point","coordinates":[400,100]},"properties":{"name":"Beta","scale":1}}
]}`
)

// workspace writes the input files and isolates cache and environment.
func workspace(t *testing.T) (dir, topo, labels string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{"LABELMAP_CACHE_BACKEND", "LABELMAP_CACHE_DIR", "LABELMAP_LOG_LEVEL", "LABELMAP_IMAGE_DIR", "LABELMAP_IMAGE_URL", "LABELMAP_FONT"} {
		t.Setenv(k, "")
	}
	topo = filepath.Join(dir, "map.topo.json")
	labels = filepath.Join(dir, "labels.geojson")
	if err := os.WriteFile(topo, []byte(topoDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(labels, []byte(labelsDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, topo, labels
}

// execute runs the CLI with args and returns stdout and the log.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestLayoutCommand(t *testing.T) {
	dir, topo, labels := workspace(t)
	out := filepath.Join(dir, "map.json")
	logFile := filepath.Join(dir, "labelmap.log")

	_, logs, err := execute(t, "layout", "--topology", topo, "--labels", labels, "-o", out, "--log-file", logFile)
	if err != nil {
		t.Fatalf("layout: %v\n%s", err, logs)
	}

	art, err := pkgio.ImportArtifact(out, "")
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if art.Len() != 2 {
		t.Errorf("artifact has %d objects, want 2", art.Len())
	}
	if _, ok := art.Base().Objects["land"]; !ok {
		t.Error("base map objects lost")
	}
	if data, _ := os.ReadFile(logFile); !strings.Contains(string(data), "layout complete") {
		t.Errorf("log file lacks the run summary: %q", data)
	}

	_, logs, err = execute(t, "layout", "--topology", topo, "--labels", labels, "-o", out)
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !strings.Contains(logs, "layout cache hit") {
		t.Errorf("second run did not hit the cache:\n%s", logs)
	}

	_, logs, err = execute(t, "layout", "--topology", topo, "--labels", labels, "-o", out, "--no-cache")
	if err != nil {
		t.Fatalf("uncached layout: %v", err)
	}
	if strings.Contains(logs, "layout cache hit") {
		t.Error("--no-cache run hit the cache")
	}
}

func TestLayoutCommandStdout(t *testing.T) {
	_, topo, labels := workspace(t)
	stdout, _, err := execute(t, "layout", "--topology", topo, "--labels", labels, "--output=-", "--cache-backend", "none")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	art, err := topology.Decode([]byte(stdout), "")
	if err != nil {
		t.Fatalf("stdout is not an artifact: %v\n%s", err, stdout)
	}
	if art.Len() != 2 {
		t.Errorf("artifact has %d objects, want 2", art.Len())
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir, topo, labels := workspace(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing labels file", []string{"--topology", topo, "--labels", filepath.Join(dir, "nope.geojson")}, errors.ErrCodeFileNotFound},
		{"bad override", []string{"--topology", topo, "--labels", labels, "--set", "imgScale=-1"}, errors.ErrCodeInvalidConfiguration},
		{"bad scale", []string{"--topology", topo, "--labels", labels, "--set", "b=wide"}, errors.ErrCodeInvalidConfiguration},
		{"bad backend", []string{"--topology", topo, "--labels", labels, "--cache-backend", "memcached"}, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"layout", "-o", filepath.Join(dir, "out.json")}, tt.args...)
			_, _, err := execute(t, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestHitCommand(t *testing.T) {
	dir, topo, labels := workspace(t)
	out := filepath.Join(dir, "map.json")
	if _, _, err := execute(t, "layout", "--topology", topo, "--labels", labels, "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	art, err := pkgio.ImportArtifact(out, "")
	if err != nil {
		t.Fatal(err)
	}

	// City-A is placed first, at its anchor.
	first := art.Objects()[0]
	r := first.Rect()
	x, y := (r.MinX+r.MaxX)/2, (r.MinY+r.MaxY)/2
	stdout, _, err := execute(t, "hit", out, ftoa(x), ftoa(y), "--json")
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	var hits []topology.Object
	if err := json.Unmarshal([]byte(stdout), &hits); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if len(hits) != 1 || hits[0].ID != "City-A" || hits[0].Properties.URL != "https://example.org/a" {
		t.Errorf("hits = %+v", hits)
	}

	stdout, _, err = execute(t, "hit", "--json", "--", out, "-5000", "-5000")
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("empty hit = %q, want []", stdout)
	}

	if _, _, err := execute(t, "hit", out, "left", "0"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad x: err = %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	dir, _, _ := workspace(t)
	file := filepath.Join(dir, "labelmap.toml")
	if err := os.WriteFile(file, []byte("[layout]\nspacingFactor = 0.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "config", "--config", file, "--set", "imgScale=0.5", "--format", "json")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if cfg.Layout.ImgScale != 0.5 || cfg.Layout.SpacingFactor != 0.3 {
		t.Errorf("imgScale=%v spacingFactor=%v", cfg.Layout.ImgScale, cfg.Layout.SpacingFactor)
	}

	for _, format := range []string{"toml", "yaml"} {
		stdout, _, err := execute(t, "config", "--format", format)
		if err != nil {
			t.Fatalf("config --format %s: %v", format, err)
		}
		if !strings.Contains(stdout, "spacingFactor") {
			t.Errorf("%s output lacks layout settings:\n%s", format, stdout)
		}
	}

	if _, _, err := execute(t, "config", "--format", "ini"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestCacheCommands(t *testing.T) {
	dir, topo, labels := workspace(t)
	stdout, _, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	cacheRoot := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(stdout) != cacheRoot {
		t.Errorf("cache path = %q, want %q", stdout, cacheRoot)
	}

	if _, _, err := execute(t, "layout", "--topology", topo, "--labels", labels, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if n := countEntries(t, cacheRoot); n == 0 {
		t.Fatal("layout stored nothing in the cache")
	}
	if _, _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n := countEntries(t, cacheRoot); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(stdout, "labelmap") {
		t.Error("completion script does not mention the command")
	}
}

func countEntries(t *testing.T, root string) int {
	t.Helper()
	n := 0
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".json") {
			n++
		}
		return nil
	})
	return n
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

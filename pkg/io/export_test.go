package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/topology"
)

const baseMap = `{"type": "Topology", "arcs": [], "objects": {"states": {"type": "GeometryCollection", "geometries": []}}}`

func TestExportImportArtifact(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	if err := os.WriteFile(basePath, []byte(baseMap), 0o644); err != nil {
		t.Fatal(err)
	}
	base, err := ImportTopology(basePath)
	if err != nil {
		t.Fatalf("ImportTopology: %v", err)
	}

	art := topology.Merge(base, "", []placement.Geometry{{
		ID:   "grant",
		Kind: placement.KindImage,
		Pos:  placement.Position{X: 1, Y: 2, W: 3, H: 4, TH: 4},
	}})

	out := filepath.Join(dir, "layout.json")
	if err := ExportArtifact(art, out); err != nil {
		t.Fatalf("ExportArtifact: %v", err)
	}

	got, err := ImportArtifact(out, "")
	if err != nil {
		t.Fatalf("ImportArtifact: %v", err)
	}
	if got.Len() != 1 || got.Objects()[0].ID != "grant" {
		t.Errorf("imported objects = %+v", got.Objects())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	var buf bytes.Buffer
	if err := WriteArtifact(art, &buf); err != nil {
		t.Fatal(err)
	}
	written, _ := os.ReadFile(out)
	if !bytes.Equal(buf.Bytes(), written) {
		t.Error("WriteArtifact and ExportArtifact disagree")
	}
}

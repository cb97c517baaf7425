package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/labelmap/pkg/topology"
)

// WriteArtifact encodes a as JSON and writes it to w.
func WriteArtifact(a *topology.Artifact, w io.Writer) error {
	if _, err := a.WriteTo(w); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ExportArtifact writes a to a JSON file at path. The file is written to a
// temporary name first and renamed into place, so readers never see a
// partial artifact.
func ExportArtifact(a *topology.Artifact, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".labelmap-*.json")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteArtifact(a, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

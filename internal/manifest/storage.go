package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteJSON writes v as indented JSON to path. The document is written to a
// temporary file in the same directory and renamed into place, so readers
// see either the old or the new file, never a torn one.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// WriteOutputs writes manifest.json and metrics.json into dir.
func WriteOutputs(dir string, res *Result) error {
	if err := WriteJSON(filepath.Join(dir, ManifestFile), res.Records); err != nil {
		return err
	}
	return WriteJSON(filepath.Join(dir, MetricsFile), res.Metrics)
}

// LoadManifest reads manifest.json from dir. A missing file is an empty
// manifest, matching a portal that has not been indexed yet.
func LoadManifest(dir string) ([]Record, error) {
	var records []Record
	if err := readJSON(filepath.Join(dir, ManifestFile), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// LoadMetrics reads metrics.json from dir, returning zero counts when absent.
func LoadMetrics(dir string) (Metrics, error) {
	m := ComputeMetrics(nil)
	if err := readJSON(filepath.Join(dir, MetricsFile), &m); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

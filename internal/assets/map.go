// Package assets uploads legacy media files and keeps the persisted map from
// legacy URL to store asset handle.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Map is the persisted legacy URL to asset handle mapping. Entries are never
// replaced once recorded.
type Map map[string]string

// LoadMap reads a map file. A missing file yields an empty map; an unreadable
// or corrupt file is an error.
func LoadMap(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("assets: read map: %w", err)
	}
	m := Map{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("assets: decode map %s: %w", path, err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Save writes the full map with two-space indentation, replacing the file
// atomically.
func (m Map) Save(path string) error {
	if m == nil {
		m = Map{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("assets: encode map: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("assets: create map dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".asset-map-*.json")
	if err != nil {
		return fmt.Errorf("assets: create temp map: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("assets: write map: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("assets: close map: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("assets: replace map: %w", err)
	}
	return nil
}

// Lookup returns the handle recorded for url.
func (m Map) Lookup(url string) (string, bool) {
	handle, ok := m[url]
	return handle, ok && handle != ""
}

// Add records url → handle unless url is already mapped. It reports whether
// the entry was added.
func (m Map) Add(url, handle string) bool {
	if url == "" || handle == "" {
		return false
	}
	if _, ok := m.Lookup(url); ok {
		return false
	}
	m[url] = handle
	return true
}

// URLs returns the mapped URLs in sorted order.
func (m Map) URLs() []string {
	out := make([]string, 0, len(m))
	for url := range m {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

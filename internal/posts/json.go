package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source yields the complete set of legacy posts.
type Source interface {
	Posts(ctx context.Context) ([]RawPost, error)
}

// JSONFile reads posts from a structured JSON export (an array of posts).
type JSONFile struct {
	Path string
}

// Posts loads the export. A missing or malformed file is an error.
func (f JSONFile) Posts(ctx context.Context) ([]RawPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("posts: open export: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode reads a JSON array of posts.
func Decode(r io.Reader) ([]RawPost, error) {
	var out []RawPost
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("posts: decode export: %w", err)
	}
	return out, nil
}

// Encode writes posts as an indented JSON array.
func Encode(w io.Writer, posts []RawPost) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if posts == nil {
		posts = []RawPost{}
	}
	return enc.Encode(posts)
}

// WriteFile writes the export atomically through a temporary file.
func WriteFile(path string, posts []RawPost) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".posts-*.json")
	if err != nil {
		return fmt.Errorf("posts: create temp export: %w", err)
	}
	tmpName := tmp.Name()
	if err := Encode(tmp, posts); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("posts: encode export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("posts: replace export: %w", err)
	}
	return nil
}

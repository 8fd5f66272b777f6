package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-wpmigrate/internal/images"
)

type recordingStore struct {
	uploads []string
	fail    map[string]bool
}

func (s *recordingStore) UploadAsset(_ context.Context, kind string, data []byte, filename string) (string, error) {
	if kind != KindImage {
		return "", errors.New("unexpected kind " + kind)
	}
	if s.fail[filename] {
		return "", errors.New("rejected")
	}
	s.uploads = append(s.uploads, filename)
	return "image-" + strings.TrimSuffix(filename, filepath.Ext(filename)) + "-" + string(data), nil
}

func TestLoadMapMissingFileIsEmpty(t *testing.T) {
	m, err := LoadMap(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadMapCorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMap(path); err == nil {
		t.Fatalf("expected error for corrupt map")
	}
}

func TestMapSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "map.json")
	m := Map{"http://x.test/b.jpg": "image-b"}
	if !m.Add("http://x.test/a.jpg", "image-a") {
		t.Fatalf("expected Add to insert new url")
	}
	if m.Add("http://x.test/a.jpg", "image-other") {
		t.Fatalf("expected Add to keep the existing handle")
	}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n  \"http://x.test/a.jpg\": \"image-a\"") {
		t.Fatalf("expected two-space indented output, got %s", raw)
	}
	loaded, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(loaded) != 2 || loaded["http://x.test/a.jpg"] != "image-a" {
		t.Fatalf("unexpected reloaded map %v", loaded)
	}
	if urls := loaded.URLs(); urls[0] != "http://x.test/a.jpg" {
		t.Fatalf("expected sorted urls, got %v", urls)
	}
}

func TestUploaderUploadsOnlyMissingURLs(t *testing.T) {
	fsys := fstest.MapFS{
		"2014/05/a.jpg": {Data: []byte("1")},
		"2014/05/b.jpg": {Data: []byte("2")},
		"2014/05/c.jpg": {Data: []byte("3")},
	}
	store := &recordingStore{fail: map[string]bool{"c.jpg": true}}
	uploader := NewUploader(store, images.NewLocator(fsys))

	m := Map{"http://x.test/wp-content/uploads/2014/05/a.jpg": "image-existing"}
	urls := []string{
		"http://x.test/wp-content/uploads/2014/05/a.jpg",
		"http://x.test/wp-content/uploads/2014/05/b.jpg",
		"http://x.test/wp-content/uploads/2014/05/b.jpg",
		"http://x.test/wp-content/uploads/2014/05/c.jpg",
		"http://x.test/wp-content/uploads/2014/05/gone.jpg",
	}

	result, err := uploader.Upload(context.Background(), urls, m, UploadOptions{})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Succeeded != 1 || result.Skipped != 1 || result.Failed() != 2 || result.Total != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(store.uploads) != 1 || store.uploads[0] != "b.jpg" {
		t.Fatalf("unexpected uploads %v", store.uploads)
	}
	if m["http://x.test/wp-content/uploads/2014/05/a.jpg"] != "image-existing" {
		t.Fatalf("existing entry was replaced")
	}
	if m["http://x.test/wp-content/uploads/2014/05/b.jpg"] != "image-b-2" {
		t.Fatalf("expected new entry, got %v", m)
	}
	if _, ok := m["http://x.test/wp-content/uploads/2014/05/c.jpg"]; ok {
		t.Fatalf("failed upload must stay unmapped")
	}
}

func TestUploaderDryRunDoesNotUpload(t *testing.T) {
	fsys := fstest.MapFS{"2014/05/a.jpg": {Data: []byte("1")}}
	uploader := NewUploader(nil, images.NewLocator(fsys))
	m := Map{}

	result, err := uploader.Upload(context.Background(), []string{"http://x.test/wp-content/uploads/2014/05/a.jpg"}, m, UploadOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Planned != 1 || len(m) != 0 {
		t.Fatalf("unexpected dry run result %+v map %v", result, m)
	}
}

func TestUploaderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uploader := NewUploader(&recordingStore{}, images.NewLocator(fstest.MapFS{}))
	if _, err := uploader.Upload(ctx, []string{"http://x.test/uploads/a.jpg"}, Map{}, UploadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

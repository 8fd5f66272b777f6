package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

func sampleDoc(id string) *interfaces.Document {
	return &interfaces.Document{
		ID:      id,
		Type:    "post",
		Title:   "Title " + id,
		Slug:    interfaces.NewSlug("title-" + id),
		Excerpt: "",
		Content: []interfaces.Block{
			{Key: "b1", Kind: interfaces.BlockParagraph, Spans: []interfaces.Span{{Key: "s1", Text: "hello", Marks: []interfaces.Mark{interfaces.MarkStrong}}}},
		},
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s := New()

	doc := sampleDoc("imported-1")
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	doc.Title = "mutated after upsert"
	doc.Content[0].Spans[0].Text = "mutated"

	stored, err := s.Get(ctx, "imported-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Title != "Title imported-1" || stored.Content[0].Spans[0].Text != "hello" {
		t.Fatalf("store kept a reference to the caller's document: %+v", stored)
	}

	replacement := sampleDoc("imported-1")
	replacement.Title = "Replaced"
	if err := s.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected upsert to replace, got %d documents", s.Len())
	}
}

func TestFetchFiltersByTypeAndPrefix(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"imported-2", "imported-1", "manual-1"} {
		if err := s.Upsert(ctx, sampleDoc(id)); err != nil {
			t.Fatal(err)
		}
	}
	other := sampleDoc("imported-author")
	other.Type = "author"
	_ = s.Upsert(ctx, other)

	docs, err := s.Fetch(ctx, interfaces.DocumentQuery{Type: "post", IDPrefix: "imported-"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "imported-1" || docs[1].ID != "imported-2" {
		t.Fatalf("unexpected fetch result %v", docs)
	}
}

func TestPatchSetsOnlyNamedFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Upsert(ctx, sampleDoc("imported-1")); err != nil {
		t.Fatal(err)
	}

	err := s.Patch("imported-1").Set(map[string]any{"excerpt": "fixed"}).Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	doc, _ := s.Get(ctx, "imported-1")
	if doc.Excerpt != "fixed" {
		t.Fatalf("expected excerpt to be patched, got %q", doc.Excerpt)
	}
	if len(doc.Content) != 1 || doc.Content[0].Spans[0].Text != "hello" || !doc.Content[0].Spans[0].HasMark(interfaces.MarkStrong) {
		t.Fatalf("patch changed content: %+v", doc.Content)
	}

	err = s.Patch("imported-404").Set(map[string]any{"excerpt": "x"}).Commit(ctx)
	if !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestUploadAssetIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, err := s.UploadAsset(ctx, "image", []byte("bytes"), "Photo.JPG")
	if err != nil {
		t.Fatalf("UploadAsset: %v", err)
	}
	b, _ := s.UploadAsset(ctx, "image", []byte("bytes"), "copy.jpg")
	if a != b {
		t.Fatalf("expected identical handles, got %q and %q", a, b)
	}
	if a != "image-daf529a73101c2be626b99fc6938163e7a27620b-jpg" {
		t.Fatalf("unexpected handle %q", a)
	}
	if _, ok := s.Asset(a); !ok {
		t.Fatalf("expected asset bytes to be stored")
	}
}

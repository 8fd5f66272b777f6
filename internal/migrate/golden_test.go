package migrate

import (
	"bytes"
	"testing"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/pkg/testsupport"
)

type goldenDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	PublishedAt string   `json:"publishedAt"`
	Excerpt     string   `json:"excerpt"`
	Kinds       []string `json:"kinds"`
	Texts       []string `json:"texts,omitempty"`
}

func TestBuildMatchesGoldenDocuments(t *testing.T) {
	items, err := posts.Decode(bytes.NewReader(testsupport.Fixture(t, "export.json")))
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	var want []goldenDocument
	testsupport.Golden(t, "documents.golden.json", &want)
	if len(items) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(items))
	}

	importer := NewImporter(nil, NewSynthesizer(SynthesizerConfig{}))
	for i, post := range items {
		doc, _, err := importer.Build(post, assets.Map{})
		if err != nil {
			t.Fatalf("build %d: %v", post.ID, err)
		}
		exp := want[i]
		if doc.ID != exp.ID || doc.Title != exp.Title || doc.Slug.Current != exp.Slug {
			t.Fatalf("post %d identity: got (%q, %q, %q) want (%q, %q, %q)", post.ID, doc.ID, doc.Title, doc.Slug.Current, exp.ID, exp.Title, exp.Slug)
		}
		if doc.PublishedAt != exp.PublishedAt {
			t.Fatalf("post %d publishedAt: got %q want %q", post.ID, doc.PublishedAt, exp.PublishedAt)
		}
		if doc.Excerpt != exp.Excerpt {
			t.Fatalf("post %d excerpt: got %q want %q", post.ID, doc.Excerpt, exp.Excerpt)
		}
		if len(doc.Content) != len(exp.Kinds) {
			t.Fatalf("post %d: expected %d blocks, got %#v", post.ID, len(exp.Kinds), doc.Content)
		}
		for j, block := range doc.Content {
			if string(block.Kind) != exp.Kinds[j] {
				t.Fatalf("post %d block %d: got %q want %q", post.ID, j, block.Kind, exp.Kinds[j])
			}
			if exp.Texts != nil && block.PlainText() != exp.Texts[j] {
				t.Fatalf("post %d block %d text: got %q want %q", post.ID, j, block.PlainText(), exp.Texts[j])
			}
		}
	}
}

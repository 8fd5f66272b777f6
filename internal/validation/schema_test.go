package validation

import (
	"errors"
	"testing"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

func validDocument() *interfaces.Document {
	return &interfaces.Document{
		ID:          "imported-7",
		Type:        "post",
		Title:       "Hello",
		Slug:        interfaces.NewSlug("hello"),
		PublishedAt: "2014-05-01T10:00:00Z",
		Excerpt:     "Hello world",
		Content: []interfaces.Block{
			{Key: "b1", Kind: interfaces.BlockHeading, Level: 2, Spans: []interfaces.Span{{Key: "s1", Text: "Hi"}}},
			{Key: "b2", Kind: interfaces.BlockImage, Asset: "image-abc-jpg"},
			{Key: "b3", Kind: interfaces.BlockParagraph, Spans: []interfaces.Span{{Key: "s2", Text: "link", Href: "http://x.test"}}},
		},
		Author: interfaces.NewReference("author-1"),
	}
}

func TestPostValidatorAcceptsValidDocument(t *testing.T) {
	v, err := NewPostValidator()
	if err != nil {
		t.Fatalf("NewPostValidator: %v", err)
	}
	if err := v.Validate(validDocument()); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestPostValidatorRejectsBlockWithoutSpans(t *testing.T) {
	v, err := NewPostValidator()
	if err != nil {
		t.Fatalf("NewPostValidator: %v", err)
	}
	doc := validDocument()
	doc.Content[0].Spans = nil
	doc.Slug = interfaces.NewSlug("")

	err = v.Validate(doc)
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if len(Issues(err)) == 0 {
		t.Fatalf("expected validation issues")
	}
}

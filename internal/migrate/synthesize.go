package migrate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/goliatone/go-wpmigrate/internal/excerpt"
	"github.com/goliatone/go-wpmigrate/internal/identity"
	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

const (
	DefaultIDPrefix      = "imported-"
	DefaultDocumentType  = "post"
	DefaultSlugMaxLength = 200

	// LegacyDateLayout is how the relational export writes post dates.
	LegacyDateLayout = "2006-01-02 15:04:05"
)

var ErrInvalidDate = errors.New("migrate: unparseable post date")

var slugSeparators = regexp.MustCompile(`[^a-z0-9æøå]+`)

// SynthesizerConfig controls how documents are assembled.
type SynthesizerConfig struct {
	IDPrefix      string
	DocumentType  string
	SlugMaxLength int
	Location      *time.Location
	Excerpt       excerpt.Options
	AuthorID      string
}

func (c SynthesizerConfig) normalized() SynthesizerConfig {
	if c.IDPrefix == "" {
		c.IDPrefix = DefaultIDPrefix
	}
	if c.DocumentType == "" {
		c.DocumentType = DefaultDocumentType
	}
	if c.SlugMaxLength <= 0 {
		c.SlugMaxLength = DefaultSlugMaxLength
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Synthesizer assembles documents from legacy posts and converted blocks.
type Synthesizer struct {
	cfg SynthesizerConfig
}

// NewSynthesizer builds a synthesizer.
func NewSynthesizer(cfg SynthesizerConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg.normalized()}
}

// DocumentID returns the store id of post.
func (s *Synthesizer) DocumentID(post posts.RawPost) string {
	return identity.DocumentID(s.cfg.IDPrefix, post.ID.String())
}

// Synthesize builds the document for post. Keys are derived from the document
// id and block positions, so the same input always yields the same document.
func (s *Synthesizer) Synthesize(post posts.RawPost, blocks []interfaces.Block) (*interfaces.Document, error) {
	published, err := PublishedAt(post.Date, s.cfg.Location)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(normalize.Text(post.Title))
	doc := &interfaces.Document{
		ID:          s.DocumentID(post),
		Type:        s.cfg.DocumentType,
		Title:       title,
		Slug:        interfaces.NewSlug(Slug(post, title, s.cfg.SlugMaxLength)),
		PublishedAt: published,
		Content:     AssignKeys(s.DocumentID(post), blocks),
	}

	doc.Excerpt = excerpt.Clean(post.Excerpt)
	if doc.Excerpt == "" {
		doc.Excerpt = excerpt.FromBlocks(doc.Content, s.cfg.Excerpt)
	}
	if s.cfg.AuthorID != "" {
		doc.Author = interfaces.NewReference(s.cfg.AuthorID)
	}
	return doc, nil
}

// AssignKeys returns a copy of blocks with deterministic block and span keys.
func AssignKeys(documentID string, blocks []interfaces.Block) []interfaces.Block {
	out := make([]interfaces.Block, len(blocks))
	for i, block := range blocks {
		block.Key = identity.BlockKey(documentID, i)
		if block.Spans != nil {
			spans := make([]interfaces.Span, len(block.Spans))
			for j, span := range block.Spans {
				span.Key = identity.SpanKey(block.Key, j)
				spans[j] = span
			}
			block.Spans = spans
		}
		out[i] = block
	}
	return out
}

// Slug derives the document slug: the legacy slug when present, otherwise the
// lowercased title with separator runs collapsed to "-".
func Slug(post posts.RawPost, title string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSlugMaxLength
	}
	candidate := strings.TrimSpace(post.Slug)
	if candidate != "" {
		if unescaped, err := url.PathUnescape(candidate); err == nil {
			candidate = unescaped
		}
	} else {
		candidate = SlugifyTitle(title)
	}
	if candidate == "" {
		if normalized, err := slug.Normalize(title); err == nil {
			candidate = normalized
		}
	}
	if candidate == "" {
		candidate = "post-" + post.ID.String()
	}
	return truncateRunes(candidate, maxLength)
}

// SlugifyTitle applies the legacy title rule: lowercase, every run outside
// [a-z0-9æøå] becomes "-", leading and trailing separators are trimmed.
func SlugifyTitle(title string) string {
	lowered := strings.ToLower(title)
	return strings.Trim(slugSeparators.ReplaceAllString(lowered, "-"), "-")
}

// PublishedAt converts a legacy date to RFC 3339. An empty date yields "".
func PublishedAt(raw string, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "0000-00-00") {
		return "", nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(LegacyDateLayout, raw, loc); err == nil {
		return t.Format(time.RFC3339), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimRight(string(runes[:limit]), "-")
}

package interfaces

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BlockKind identifies the structural type of a content block.
type BlockKind string

const (
	BlockParagraph  BlockKind = "paragraph"
	BlockHeading    BlockKind = "heading"
	BlockBlockquote BlockKind = "blockquote"
	BlockImage      BlockKind = "image"
)

// Mark is an inline style annotation applied to a span.
type Mark string

const (
	MarkStrong Mark = "strong"
	MarkEm     Mark = "em"
)

const (
	wireTypeBlock     = "block"
	wireTypeImage     = "image"
	wireTypeSpan      = "span"
	wireTypeLink      = "link"
	wireTypeReference = "reference"
	wireTypeSlug      = "slug"
	wireStyleNormal   = "normal"
	wireStyleQuote    = "blockquote"
	linkKeyPrefix     = "lnk"
)

// Span is one run of text within a block sharing the same marks. Href is set
// for link spans and carries the link target.
type Span struct {
	Key   string
	Text  string
	Marks []Mark
	Href  string
}

// HasMark reports whether the span carries the supplied mark.
func (s Span) HasMark(mark Mark) bool {
	for _, m := range s.Marks {
		if m == mark {
			return true
		}
	}
	return false
}

// Block is a tagged union over paragraph, heading, blockquote and image.
// Text blocks own Spans; image blocks carry an Asset handle instead.
type Block struct {
	Key   string
	Kind  BlockKind
	Level int
	Spans []Span
	Asset string
}

// PlainText concatenates the text of every span in the block.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, span := range b.Spans {
		sb.WriteString(span.Text)
	}
	return sb.String()
}

type wireSpan struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type wireMarkDef struct {
	Type string `json:"_type"`
	Key  string `json:"_key"`
	Href string `json:"href,omitempty"`
}

type wireBlock struct {
	Type     string        `json:"_type"`
	Key      string        `json:"_key"`
	Style    string        `json:"style,omitempty"`
	Children []wireSpan    `json:"children,omitempty"`
	MarkDefs []wireMarkDef `json:"markDefs"`
	Asset    *Reference    `json:"asset,omitempty"`
}

type wireImage struct {
	Type  string    `json:"_type"`
	Key   string    `json:"_key"`
	Asset Reference `json:"asset"`
}

// MarshalJSON renders the block in the portable rich-text wire shape.
func (b Block) MarshalJSON() ([]byte, error) {
	if b.Kind == BlockImage {
		return json.Marshal(wireImage{
			Type:  wireTypeImage,
			Key:   b.Key,
			Asset: Reference{Type: wireTypeReference, Ref: b.Asset},
		})
	}

	style, err := blockStyle(b)
	if err != nil {
		return nil, err
	}
	out := wireBlock{
		Type:     wireTypeBlock,
		Key:      b.Key,
		Style:    style,
		Children: make([]wireSpan, 0, len(b.Spans)),
		MarkDefs: []wireMarkDef{},
	}
	for _, span := range b.Spans {
		marks := make([]string, 0, len(span.Marks)+1)
		for _, mark := range span.Marks {
			marks = append(marks, string(mark))
		}
		if span.Href != "" {
			defKey := linkKeyPrefix + span.Key
			out.MarkDefs = append(out.MarkDefs, wireMarkDef{Type: wireTypeLink, Key: defKey, Href: span.Href})
			marks = append(marks, defKey)
		}
		out.Children = append(out.Children, wireSpan{
			Type:  wireTypeSpan,
			Key:   span.Key,
			Text:  span.Text,
			Marks: marks,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the portable rich-text wire shape back into a Block.
func (b *Block) UnmarshalJSON(data []byte) error {
	var in wireBlock
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Type {
	case wireTypeImage:
		*b = Block{Key: in.Key, Kind: BlockImage}
		if in.Asset != nil {
			b.Asset = in.Asset.Ref
		}
		return nil
	case wireTypeBlock:
	default:
		return fmt.Errorf("document: unsupported block type %q", in.Type)
	}

	kind, level, err := parseStyle(in.Style)
	if err != nil {
		return err
	}
	links := make(map[string]string, len(in.MarkDefs))
	for _, def := range in.MarkDefs {
		if def.Type == wireTypeLink {
			links[def.Key] = def.Href
		}
	}

	out := Block{Key: in.Key, Kind: kind, Level: level, Spans: make([]Span, 0, len(in.Children))}
	for _, child := range in.Children {
		span := Span{Key: child.Key, Text: child.Text}
		for _, mark := range child.Marks {
			if href, ok := links[mark]; ok {
				span.Href = href
				continue
			}
			span.Marks = append(span.Marks, Mark(mark))
		}
		out.Spans = append(out.Spans, span)
	}
	*b = out
	return nil
}

func blockStyle(b Block) (string, error) {
	switch b.Kind {
	case BlockParagraph, "":
		return wireStyleNormal, nil
	case BlockBlockquote:
		return wireStyleQuote, nil
	case BlockHeading:
		if b.Level < 1 || b.Level > 6 {
			return "", fmt.Errorf("document: heading level %d out of range", b.Level)
		}
		return "h" + strconv.Itoa(b.Level), nil
	default:
		return "", fmt.Errorf("document: unsupported block kind %q", b.Kind)
	}
}

func parseStyle(style string) (BlockKind, int, error) {
	switch style {
	case "", wireStyleNormal:
		return BlockParagraph, 0, nil
	case wireStyleQuote:
		return BlockBlockquote, 0, nil
	}
	if len(style) == 2 && style[0] == 'h' && style[1] >= '1' && style[1] <= '6' {
		return BlockHeading, int(style[1] - '0'), nil
	}
	return "", 0, fmt.Errorf("document: unsupported block style %q", style)
}

// Reference points at another document or asset by id.
type Reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// NewReference builds a document reference to id.
func NewReference(id string) *Reference {
	return &Reference{Type: wireTypeReference, Ref: id}
}

// Slug is the URL-safe document handle.
type Slug struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

// NewSlug wraps value as a slug field.
func NewSlug(value string) Slug {
	return Slug{Type: wireTypeSlug, Current: value}
}

// Document is one migrated post as stored in the target document store.
type Document struct {
	ID          string     `json:"_id"`
	Type        string     `json:"_type"`
	Title       string     `json:"title"`
	Slug        Slug       `json:"slug"`
	PublishedAt string     `json:"publishedAt,omitempty"`
	Content     []Block    `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Author      *Reference `json:"author,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Author != nil {
		author := *d.Author
		out.Author = &author
	}
	if d.Content != nil {
		out.Content = make([]Block, len(d.Content))
		for i, block := range d.Content {
			copied := block
			if block.Spans != nil {
				copied.Spans = make([]Span, len(block.Spans))
				for j, span := range block.Spans {
					copied.Spans[j] = span
					if span.Marks != nil {
						copied.Spans[j].Marks = append([]Mark(nil), span.Marks...)
					}
				}
			}
			out.Content[i] = copied
		}
	}
	return &out
}

// ToMap renders the document as a generic JSON object.
func (d *Document) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplySet returns a copy of doc with the supplied top-level fields replaced.
// Field names use the wire names (e.g. "excerpt", "author").
func ApplySet(doc *Document, fields map[string]any) (*Document, error) {
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	payload, err := doc.ToMap()
	if err != nil {
		return nil, err
	}
	for key, value := range fields {
		payload[key] = value
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("document: apply patch: %w", err)
	}
	return &out, nil
}

package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-wpmigrate/internal/images"
)

// Options controls the goldmark engine.
type Options struct {
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML from the output.
	SafeMode bool
}

// Renderer turns intermediate markup into HTML. It is stateless and safe for
// concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a renderer with GFM extensions unless opts names others.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{engine: newGoldmarkEngine(opts)}
}

// Render converts markup to HTML. Image placeholders are left as text.
func (r *Renderer) Render(markup string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markup), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

// RenderWithImages replaces every placeholder with an image pointing at the
// matching entry of urls before rendering. Placeholders without a URL become
// a visible marker.
func (r *Renderer) RenderWithImages(markup string, urls []string) (string, error) {
	return r.Render(ExpandPlaceholders(markup, urls))
}

// ExpandPlaceholders rewrites placeholder tokens as markdown images.
func ExpandPlaceholders(markup string, urls []string) string {
	tokens := images.FindTokens(markup)
	if len(tokens) == 0 {
		return markup
	}
	var sb strings.Builder
	last := 0
	for _, tok := range tokens {
		sb.WriteString(markup[last:tok.Start])
		if tok.Index >= 0 && tok.Index < len(urls) && urls[tok.Index] != "" {
			fmt.Fprintf(&sb, "![image %d](%s)", tok.Index, urls[tok.Index])
		} else {
			fmt.Fprintf(&sb, "[missing image %d]", tok.Index)
		}
		last = tok.End
	}
	sb.WriteString(markup[last:])
	return sb.String()
}

func newGoldmarkEngine(opts Options) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// Package htmlmd reduces cleaned post HTML to the intermediate line-oriented
// markdown consumed by the block parser.
package htmlmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var (
	// escapedPlaceholder matches placeholder tokens after the converter has
	// backslash-escaped their underscores.
	escapedPlaceholder = regexp.MustCompile(`(?:\\?_){2}IMAGE\\?_PLACEHOLDER\\?_(\d+)(?:\\?_){2}`)
	linkedPlaceholder  = regexp.MustCompile(`(?is)<a\b[^>]*>\s*(__IMAGE_PLACEHOLDER_\d+__)\s*</a>`)
	paragraphBreak     = regexp.MustCompile(`\n[ \t]*\n`)
	blockTagPrefix     = regexp.MustCompile(`(?i)^<(?:/?)(?:p|h[1-6]|blockquote|ul|ol|li|div|table|thead|tbody|tr|td|th|pre|figure|figcaption|hr|dl|dt|dd|section|article|aside|header|footer|address|form|iframe|object|style|script)\b`)
)

// Reducer converts HTML into markdown with ATX headings, `*`/`**` emphasis,
// inline links and `>` blockquotes.
type Reducer struct {
	conv *converter.Converter
}

// NewReducer builds a reducer on the commonmark plugin set.
func NewReducer() *Reducer {
	return &Reducer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
				),
			),
		),
	}
}

// Reduce converts html to markdown. Blank-line separated text is paragraphed
// first, anchors wrapping only an image placeholder are unwrapped, and
// placeholder tokens are restored verbatim in the output.
func (r *Reducer) Reduce(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	prepared := linkedPlaceholder.ReplaceAllString(Autop(html), "$1")
	markdown, err := r.conv.ConvertString(prepared)
	if err != nil {
		return "", fmt.Errorf("htmlmd: convert: %w", err)
	}
	return RestorePlaceholders(markdown), nil
}

// RestorePlaceholders removes any escaping the converter applied to
// placeholder tokens.
func RestorePlaceholders(markdown string) string {
	return escapedPlaceholder.ReplaceAllString(markdown, "__IMAGE_PLACEHOLDER_${1}__")
}

// Autop wraps blank-line separated chunks of text in paragraph tags. Chunks
// that already open with a block-level tag are left alone and single line
// breaks inside a paragraph become <br>.
func Autop(html string) string {
	normalized := strings.ReplaceAll(html, "\r\n", "\n")
	if !strings.Contains(normalized, "\n") {
		if blockTagPrefix.MatchString(strings.TrimSpace(normalized)) {
			return normalized
		}
		return "<p>" + strings.TrimSpace(normalized) + "</p>"
	}

	chunks := paragraphBreak.Split(normalized, -1)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if blockTagPrefix.MatchString(trimmed) {
			out = append(out, trimmed)
			continue
		}
		lines := strings.Split(trimmed, "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		out = append(out, "<p>"+strings.Join(lines, "<br>\n")+"</p>")
	}
	return strings.Join(out, "\n\n")
}

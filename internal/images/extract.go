// Package images finds image references in post markup, swaps them for
// positional placeholders and maps legacy upload URLs onto the local media tree.
package images

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// imagePattern tolerates backslash-escaped quotes around the src value.
var imagePattern = regexp.MustCompile(`(?i)<img[^>]+src=\\*["']([^"'\\]+)\\*["'][^>]*>`)

var placeholderPattern = regexp.MustCompile(`__IMAGE_PLACEHOLDER_(\d+)__`)

const placeholderFormat = "__IMAGE_PLACEHOLDER_%d__"

// Reference is one image tag found in a fragment.
type Reference struct {
	Tag   string
	URL   string
	Start int
	End   int
}

// Extract returns every image tag in document order. Duplicate URLs are kept.
func Extract(html string) []Reference {
	matches := imagePattern.FindAllStringSubmatchIndex(html, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{
			Tag:   html[m[0]:m[1]],
			URL:   strings.TrimSpace(html[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
	}
	return refs
}

// URLs returns the src values of Extract in order.
func URLs(html string) []string {
	refs := Extract(html)
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.URL
	}
	return out
}

// Placeholder renders the token standing in for the image at index.
func Placeholder(index int) string {
	return fmt.Sprintf(placeholderFormat, index)
}

// Substitute extracts the image tags of html and replaces each with its
// placeholder token. The returned references are indexed by placeholder.
func Substitute(html string) (string, []Reference) {
	refs := Extract(html)
	if len(refs) == 0 {
		return html, nil
	}
	var sb strings.Builder
	sb.Grow(len(html))
	last := 0
	for i, ref := range refs {
		sb.WriteString(html[last:ref.Start])
		sb.WriteString(Placeholder(i))
		last = ref.End
	}
	sb.WriteString(html[last:])
	return sb.String(), refs
}

// Token locates a placeholder inside text.
type Token struct {
	Index int
	Start int
	End   int
}

// FindTokens returns every placeholder token in text, in order.
func FindTokens(text string) []Token {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		index, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		tokens = append(tokens, Token{Index: index, Start: m[0], End: m[1]})
	}
	return tokens
}

// ContainsPlaceholder reports whether text still carries a placeholder token.
func ContainsPlaceholder(text string) bool {
	return placeholderPattern.MatchString(text)
}

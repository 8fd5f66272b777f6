// Package excerpt derives and checks short plain-text post summaries.
package excerpt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/internal/shortcode"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

const (
	DefaultBudget = 160
	DefaultMarker = "..."
)

const (
	ReasonEmpty      = "empty"
	ReasonEscapes    = "escape_artifacts"
	ReasonShortcode  = "shortcode_marker"
	ReasonZeroWidth  = "zero_width"
	ReasonEntities   = "html_entities"
	ReasonMarkupTags = "markup_tags"
)

var (
	tagPattern       = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	zeroWidthPattern = regexp.MustCompile("[\u200B-\u200D\uFEFF]")
	escapePattern    = regexp.MustCompile(`\\[rn"'\\]`)
	entityPattern    = regexp.MustCompile(`&(?:[a-zA-Z]+|#\d+|#x[0-9a-fA-F]+);`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Options controls excerpt length.
type Options struct {
	Budget int
	Marker string
}

func (o Options) normalized() Options {
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	return o
}

// Clean turns legacy excerpt or content text into a single line of plain
// text: escapes decoded, captions and shortcodes removed, tags stripped,
// entities decoded, zero-width characters dropped and whitespace collapsed.
func Clean(raw string) string {
	text := normalize.DecodeEscapes(raw)
	text = shortcode.StripCaptions(text)
	text = shortcode.StripMarkers(text)
	text = tagPattern.ReplaceAllString(text, " ")
	text = normalize.DecodeEntities(text)
	text = zeroWidthPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// Truncate cuts text to opts.Budget characters and appends the marker when
// anything was removed.
func Truncate(text string, opts Options) string {
	opts = opts.normalized()
	if utf8.RuneCountInString(text) <= opts.Budget {
		return text
	}
	count := 0
	for i := range text {
		if count == opts.Budget {
			return strings.TrimRight(text[:i], " ") + opts.Marker
		}
		count++
	}
	return text
}

// FromText cleans and truncates raw text.
func FromText(raw string, opts Options) string {
	return Truncate(Clean(raw), opts)
}

// FromBlocks builds an excerpt from the plain text of every text block.
func FromBlocks(blocks []interfaces.Block, opts Options) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Kind == interfaces.BlockImage {
			continue
		}
		if text := block.PlainText(); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return FromText(strings.Join(parts, " "), opts)
}

// Diagnose lists the artifacts found in an excerpt. An empty result means the
// excerpt is clean. Besides emptiness, escapes, shortcode markers and
// zero-width characters, leftover entities and HTML tags count as artifacts;
// bare "<", ">" and "&" in prose do not.
func Diagnose(value string) []string {
	var reasons []string
	if strings.TrimSpace(value) == "" {
		return []string{ReasonEmpty}
	}
	if escapePattern.MatchString(value) {
		reasons = append(reasons, ReasonEscapes)
	}
	if strings.Contains(value, "[caption") || shortcode.HasMarker(value) {
		reasons = append(reasons, ReasonShortcode)
	}
	if zeroWidthPattern.MatchString(value) {
		reasons = append(reasons, ReasonZeroWidth)
	}
	if entityPattern.MatchString(value) {
		reasons = append(reasons, ReasonEntities)
	}
	if tagPattern.MatchString(value) {
		reasons = append(reasons, ReasonMarkupTags)
	}
	return reasons
}

// NeedsRepair reports whether Diagnose finds anything.
func NeedsRepair(value string) bool {
	return len(Diagnose(value)) > 0
}

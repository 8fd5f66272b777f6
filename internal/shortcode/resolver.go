// Package shortcode rewrites legacy bracket shortcodes into plain HTML.
package shortcode

import (
	"regexp"
	"strings"
)

var (
	captionPattern   = regexp.MustCompile(`(?is)\[caption[^\]]*\](.*?)\[/caption\]`)
	imageTagPattern  = regexp.MustCompile(`(?i)<img[^>]*>`)
	emptyLinkPattern = regexp.MustCompile(`(?is)<a\b[^>]*>\s*</a>`)
	tagPattern       = regexp.MustCompile(`\[(/?)([a-z][a-z0-9_\-]*)([^\]]*)\]`)
)

// Resolve rewrites caption wrappers into an image tag followed by a
// blockquote holding the caption text, then deletes every other shortcode
// marker. Wrapped content of unknown shortcodes is kept.
func Resolve(html string) string {
	if !strings.Contains(html, "[") {
		return html
	}
	return StripMarkers(ResolveCaptions(html))
}

// ResolveCaptions applies the caption policy: image and text yields the image
// followed by a blockquote, image only yields the image, text only yields the
// blockquote and an empty caption is dropped.
func ResolveCaptions(html string) string {
	return captionPattern.ReplaceAllStringFunc(html, func(match string) string {
		groups := captionPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		inner := groups[1]

		image := imageTagPattern.FindString(inner)
		text := inner
		if image != "" {
			text = imageTagPattern.ReplaceAllLiteralString(text, "")
			text = emptyLinkPattern.ReplaceAllString(text, "")
		}
		text = strings.TrimSpace(text)

		switch {
		case image != "" && text != "":
			return image + "<blockquote>" + text + "</blockquote>"
		case image != "":
			return image
		case text != "":
			return "<blockquote>" + text + "</blockquote>"
		default:
			return ""
		}
	})
}

// StripMarkers deletes every bracket shortcode marker (opening, closing or
// self-closing) and leaves the surrounding text in place. A marker is a
// lowercase name optionally followed by attributes; bracketed prose such as
// "[Read more]" or "[1]" is not a marker.
func StripMarkers(html string) string {
	if !strings.Contains(html, "[") {
		return html
	}
	return tagPattern.ReplaceAllStringFunc(html, func(match string) string {
		if isMarker(match) {
			return ""
		}
		return match
	})
}

// isMarker checks what follows the name: nothing, "/" for self-closing, or
// attributes carrying "=". A closing marker takes no attributes.
func isMarker(match string) bool {
	groups := tagPattern.FindStringSubmatch(match)
	if len(groups) < 4 {
		return false
	}
	rest := strings.TrimSpace(groups[3])
	if rest == "" {
		return true
	}
	if groups[1] == "/" {
		return false
	}
	if rest[0] != '/' && groups[3][0] != ' ' && groups[3][0] != '\t' {
		return false
	}
	return rest == "/" || strings.Contains(rest, "=")
}

// StripCaptions removes caption wrappers together with their content. Plain
// text consumers such as excerpts use it.
func StripCaptions(text string) string {
	return captionPattern.ReplaceAllString(text, "")
}

// HasMarker reports whether text still contains a shortcode marker.
func HasMarker(text string) bool {
	if !strings.Contains(text, "[") {
		return false
	}
	for _, match := range tagPattern.FindAllString(text, -1) {
		if isMarker(match) {
			return true
		}
	}
	return false
}

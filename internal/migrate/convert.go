// Package migrate turns legacy posts into structured documents and runs the
// import, excerpt repair and author assignment passes against a store.
package migrate

import (
	"fmt"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/htmlmd"
	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/internal/richtext"
	"github.com/goliatone/go-wpmigrate/internal/shortcode"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// Conversion is the result of running one post body through the pipeline.
type Conversion struct {
	// HTML is the normalized markup with captions resolved, before image
	// substitution.
	HTML string
	// Markup is the intermediate line-oriented markup with placeholders.
	Markup string
	// Images lists every image reference in document order.
	Images []images.Reference
	// Blocks is the content without keys.
	Blocks []interfaces.Block
	// Unresolved lists image URLs absent from the asset map, in order.
	Unresolved []string
}

// Converter runs legacy post HTML through normalization, shortcode
// resolution, image substitution, markdown reduction and block parsing.
type Converter struct {
	reducer *htmlmd.Reducer
}

// NewConverter builds a converter.
func NewConverter() *Converter {
	return &Converter{reducer: htmlmd.NewReducer()}
}

// Convert turns raw export content into content blocks. Images resolve
// against m; unresolved images yield no block and are listed in the result.
func (c *Converter) Convert(raw string, m assets.Map) (Conversion, error) {
	html := shortcode.Resolve(normalize.Markup(raw))
	substituted, refs := images.Substitute(html)

	markup, err := c.reducer.Reduce(substituted)
	if err != nil {
		return Conversion{}, fmt.Errorf("migrate: reduce markup: %w", err)
	}

	conv := Conversion{HTML: html, Markup: markup, Images: refs}
	for _, ref := range refs {
		if _, ok := m.Lookup(ref.URL); !ok {
			conv.Unresolved = append(conv.Unresolved, ref.URL)
		}
	}
	conv.Blocks = richtext.Build(markup, func(index int) (string, bool) {
		if index < 0 || index >= len(refs) {
			return "", false
		}
		return m.Lookup(refs[index].URL)
	})
	return conv, nil
}

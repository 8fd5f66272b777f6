package richtext

import (
	"strings"

	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// ImageResolver maps a placeholder index to an asset handle.
type ImageResolver func(index int) (string, bool)

// Build parses markdown into content blocks. Placeholder tokens become image
// blocks at their position: text before a token stays in a block of the
// original kind and text after it moves into a new paragraph. Placeholders the
// resolver cannot map are dropped. Keys are left empty.
func Build(markdown string, resolve ImageResolver) []interfaces.Block {
	raw := ParseBlocks(markdown)
	out := make([]interfaces.Block, 0, len(raw))
	for _, block := range raw {
		out = append(out, expand(block, resolve)...)
	}
	return out
}

func expand(block RawBlock, resolve ImageResolver) []interfaces.Block {
	tokens := images.FindTokens(block.Text)
	if len(tokens) == 0 {
		return []interfaces.Block{textBlock(block.Kind, block.Level, block.Text)}
	}

	var out []interfaces.Block
	kind, level := block.Kind, block.Level
	last := 0
	for _, token := range tokens {
		if before := strings.TrimSpace(block.Text[last:token.Start]); before != "" {
			out = append(out, textBlock(kind, level, before))
		}
		if resolve != nil {
			if asset, ok := resolve(token.Index); ok {
				out = append(out, interfaces.Block{Kind: interfaces.BlockImage, Asset: asset})
			}
		}
		kind, level = interfaces.BlockParagraph, 0
		last = token.End
	}
	if after := strings.TrimSpace(block.Text[last:]); after != "" {
		out = append(out, textBlock(kind, level, after))
	}
	return out
}

func textBlock(kind interfaces.BlockKind, level int, text string) interfaces.Block {
	return interfaces.Block{Kind: kind, Level: level, Spans: ScanInline(text)}
}

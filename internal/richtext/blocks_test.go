package richtext

import (
	"testing"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

func TestParseBlocks(t *testing.T) {
	markdown := "## Heading two\n\nFirst line\nsecond line\n> quoted text\n\n- item one\n- item two\n1. numbered\n\n* * *\n\n####### too deep\n#tag"

	blocks := ParseBlocks(markdown)
	want := []RawBlock{
		{Kind: interfaces.BlockHeading, Level: 2, Text: "Heading two"},
		{Kind: interfaces.BlockParagraph, Text: "First line\nsecond line"},
		{Kind: interfaces.BlockBlockquote, Text: "quoted text"},
		{Kind: interfaces.BlockParagraph, Text: "item one\nitem two\nnumbered"},
		{Kind: interfaces.BlockParagraph, Text: "####### too deep\n#tag"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %#v", len(want), len(blocks), blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("block %d = %#v, want %#v", i, blocks[i], want[i])
		}
	}
}

func TestParseBlocksHeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		line := ""
		for i := 0; i < level; i++ {
			line += "#"
		}
		blocks := ParseBlocks(line + " Title ##")
		if len(blocks) != 1 || blocks[0].Level != level || blocks[0].Text != "Title" {
			t.Fatalf("level %d: unexpected blocks %#v", level, blocks)
		}
	}
}

func TestParseBlocksEachQuoteLineIsOneBlock(t *testing.T) {
	blocks := ParseBlocks("> one\n> two\n>\n> > three")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blockquotes, got %#v", blocks)
	}
	if blocks[2].Text != "three" {
		t.Fatalf("expected nested marker stripped, got %q", blocks[2].Text)
	}
}

func TestParseBlocksHardBreaks(t *testing.T) {
	blocks := ParseBlocks("line one\\\nline two  \nends with \\\\")
	if len(blocks) != 1 || blocks[0].Text != "line one\nline two\nends with \\\\" {
		t.Fatalf("unexpected blocks %#v", blocks)
	}
}

// Package richtext turns intermediate markdown into ordered content blocks
// with marked text spans.
package richtext

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

var (
	orderedListMarker = regexp.MustCompile(`^\d+[.)]\s+`)
	thematicBreak     = regexp.MustCompile(`^(?:[-*_][ \t]*){3,}$`)
)

// RawBlock is a block before inline scanning and image substitution.
type RawBlock struct {
	Kind  interfaces.BlockKind
	Level int
	Text  string
}

// ParseBlocks splits markdown into paragraph, heading and blockquote blocks in
// a single pass over its lines. List items degrade to paragraph lines.
func ParseBlocks(markdown string) []RawBlock {
	p := &blockParser{}
	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		p.line(strings.TrimSpace(line))
	}
	p.flush()
	return p.blocks
}

type blockParser struct {
	blocks []RawBlock
	buffer []string
}

func (p *blockParser) line(line string) {
	switch {
	case line == "":
		p.flush()
	case strings.HasPrefix(line, ">"):
		p.flush()
		if text := stripQuote(line); text != "" {
			p.blocks = append(p.blocks, RawBlock{Kind: interfaces.BlockBlockquote, Text: text})
		}
	case headingLevel(line) > 0:
		p.flush()
		level := headingLevel(line)
		p.blocks = append(p.blocks, RawBlock{
			Kind:  interfaces.BlockHeading,
			Level: level,
			Text:  headingText(line[level:]),
		})
	case thematicBreak.MatchString(line), strings.HasPrefix(line, "```"), strings.HasPrefix(line, "~~~"):
		p.flush()
	default:
		p.buffer = append(p.buffer, stripHardBreak(stripListMarker(line)))
	}
}

func (p *blockParser) flush() {
	if len(p.buffer) == 0 {
		return
	}
	text := strings.TrimSpace(strings.Join(p.buffer, "\n"))
	p.buffer = p.buffer[:0]
	if text == "" {
		return
	}
	p.blocks = append(p.blocks, RawBlock{Kind: interfaces.BlockParagraph, Text: text})
}

// headingLevel returns the ATX level of line, or 0 when it is not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level == len(line) {
		return 0
	}
	if c := line[level]; c != ' ' && c != '\t' {
		return 0
	}
	if strings.TrimSpace(line[level:]) == "" {
		return 0
	}
	return level
}

func headingText(rest string) string {
	text := strings.TrimSpace(rest)
	closing := strings.TrimRight(text, "#")
	if closing != text && (closing == "" || strings.HasSuffix(closing, " ")) {
		text = strings.TrimSpace(closing)
	}
	return text
}

func stripQuote(line string) string {
	for strings.HasPrefix(line, ">") {
		line = strings.TrimSpace(line[1:])
	}
	return line
}

func stripListMarker(line string) string {
	if len(line) >= 2 && (line[0] == '-' || line[0] == '*' || line[0] == '+') && (line[1] == ' ' || line[1] == '\t') {
		return strings.TrimSpace(line[2:])
	}
	if loc := orderedListMarker.FindStringIndex(line); loc != nil {
		return line[loc[1]:]
	}
	return line
}

// stripHardBreak removes a trailing backslash hard break, keeping an escaped
// backslash intact.
func stripHardBreak(line string) string {
	if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
		return strings.TrimSpace(line[:len(line)-1])
	}
	return line
}

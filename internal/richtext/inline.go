package richtext

import (
	"strings"

	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// ScanInline splits text into spans in one left-to-right pass. It recognises
// `**`/`__` bold, `*`/`_` italic, `[label](target)` links and backslash
// escapes. Unmatched delimiters are kept as literal text. Entities left in
// the markup are decoded per span, after delimiters are matched, so a decoded
// character never opens a mark. The result always holds at least one span.
func ScanInline(text string) []interfaces.Span {
	s := &scanner{}
	s.scan(text, nil, "")
	if len(s.spans) == 0 {
		return []interfaces.Span{{Text: ""}}
	}
	return s.spans
}

type scanner struct {
	spans []interfaces.Span
}

func (s *scanner) emit(text string, marks []interfaces.Mark, href string) {
	if text == "" {
		return
	}
	span := interfaces.Span{Text: normalize.DecodeEntities(text), Href: href}
	if len(marks) > 0 {
		span.Marks = append([]interfaces.Mark(nil), marks...)
	}
	s.spans = append(s.spans, span)
}

func (s *scanner) scan(text string, marks []interfaces.Mark, href string) {
	var buf strings.Builder
	flush := func() {
		s.emit(buf.String(), marks, href)
		buf.Reset()
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && isPunct(text[i+1]):
			buf.WriteByte(text[i+1])
			i += 2

		case (c == '*' || c == '_') && i+1 < len(text) && text[i+1] == c:
			delim := text[i : i+2]
			end := strings.Index(text[i+2:], delim)
			if end < 0 {
				buf.WriteString(delim)
				i += 2
				continue
			}
			flush()
			s.scan(text[i+2:i+2+end], withMark(marks, interfaces.MarkStrong), href)
			i += 2 + end + 2

		case c == '*' || c == '_':
			end := strings.IndexByte(text[i+1:], c)
			if end < 0 {
				buf.WriteByte(c)
				i++
				continue
			}
			flush()
			s.scan(text[i+1:i+1+end], withMark(marks, interfaces.MarkEm), href)
			i += 1 + end + 1

		case c == '[':
			label, target, next, ok := matchLink(text, i)
			if !ok {
				buf.WriteByte(c)
				i++
				continue
			}
			flush()
			s.scan(label, marks, target)
			i = next

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
}

// matchLink recognises `[label](target)` starting at text[start]. It returns
// the label, the cleaned target and the index after the closing paren.
func matchLink(text string, start int) (string, string, int, bool) {
	closeLabel := strings.IndexByte(text[start+1:], ']')
	if closeLabel < 0 {
		return "", "", 0, false
	}
	closeLabel += start + 1
	if closeLabel+1 >= len(text) || text[closeLabel+1] != '(' {
		return "", "", 0, false
	}
	closeTarget := strings.IndexByte(text[closeLabel+2:], ')')
	if closeTarget < 0 {
		return "", "", 0, false
	}
	closeTarget += closeLabel + 2
	return text[start+1 : closeLabel], cleanTarget(text[closeLabel+2 : closeTarget]), closeTarget + 1, true
}

// cleanTarget drops an optional link title and angle brackets.
func cleanTarget(raw string) string {
	target := strings.TrimSpace(raw)
	if strings.HasPrefix(target, "<") {
		if end := strings.IndexByte(target, '>'); end > 0 {
			return target[1:end]
		}
	}
	if idx := strings.IndexAny(target, " \t"); idx >= 0 {
		target = target[:idx]
	}
	return target
}

func withMark(marks []interfaces.Mark, mark interfaces.Mark) []interfaces.Mark {
	for _, m := range marks {
		if m == mark {
			return marks
		}
	}
	out := make([]interfaces.Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, mark)
}

func isPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

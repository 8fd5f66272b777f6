// Package normalize decodes the escaping layers found in legacy post exports:
// backslash escapes added by the SQL dump and HTML entities added by the editor.
package normalize

import (
	"html"
	"strings"
)

const maxEntityLength = 32

// Text decodes export escapes and then every HTML entity. Use it for plain
// text fields such as titles and excerpts.
func Text(raw string) string {
	return DecodeEntities(DecodeEscapes(raw))
}

// Markup decodes export escapes and then HTML entities, keeping the entities
// that encode markup characters (< > & " ') so decoding never creates tags.
func Markup(raw string) string {
	return DecodeMarkupEntities(DecodeEscapes(raw))
}

// DecodeEscapes reverses the backslash escaping applied by SQL exports in a
// single pass. Escaped line breaks (\r\n, \n, \r) become "\n". Unknown escape
// pairs are kept verbatim.
func DecodeEscapes(raw string) string {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		next := raw[i+1]
		switch next {
		case '\\', '"', '\'':
			sb.WriteByte(next)
			i++
		case 'n':
			sb.WriteByte('\n')
			i++
		case 'r':
			sb.WriteByte('\n')
			i++
			if i+2 < len(raw) && raw[i+1] == '\\' && raw[i+2] == 'n' {
				i += 2
			}
		case 't':
			sb.WriteByte('\t')
			i++
		case '0':
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// DecodeEntities replaces HTML entities with their characters. Non-breaking
// spaces become plain spaces and unknown named entities collapse to a single
// space. A bare ampersand is left untouched.
func DecodeEntities(s string) string {
	return decodeEntities(s, false)
}

// DecodeMarkupEntities behaves like DecodeEntities but leaves entities that
// decode to markup-significant characters encoded.
func DecodeMarkupEntities(s string) string {
	return decodeEntities(s, true)
}

func decodeEntities(s string, keepMarkup bool) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		end := entityEnd(s, i)
		if end < 0 {
			sb.WriteByte('&')
			i++
			continue
		}
		entity := s[i : end+1]
		sb.WriteString(decodeEntity(entity, keepMarkup))
		i = end + 1
	}
	return sb.String()
}

// entityEnd returns the index of the ';' closing the entity starting at
// start, or -1 when the text does not form an entity.
func entityEnd(s string, start int) int {
	i := start + 1
	if i >= len(s) {
		return -1
	}
	numeric := s[i] == '#'
	hex := false
	if numeric {
		i++
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			hex = true
			i++
		}
	}
	body := i
	for ; i < len(s) && i-start <= maxEntityLength; i++ {
		c := s[i]
		switch {
		case c == ';':
			if i == body {
				return -1
			}
			return i
		case c >= '0' && c <= '9':
		case hex && isHexLetter(c):
		case !numeric && isLetter(c):
		default:
			return -1
		}
	}
	return -1
}

func decodeEntity(entity string, keepMarkup bool) string {
	decoded := html.UnescapeString(entity)
	if decoded == entity {
		return " "
	}
	switch decoded {
	case "\u00a0":
		return " "
	case "<", ">", "&", "\"", "'":
		if keepMarkup {
			return entity
		}
	}
	return decoded
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexLetter(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

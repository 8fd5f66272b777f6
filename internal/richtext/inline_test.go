package richtext

import (
	"testing"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

func spanTexts(spans []interfaces.Span) []string {
	out := make([]string, len(spans))
	for i, span := range spans {
		out[i] = span.Text
	}
	return out
}

func TestScanInlineBold(t *testing.T) {
	spans := ScanInline("a **bold** b")
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %#v", spans)
	}
	if spans[1].Text != "bold" || len(spans[1].Marks) != 1 || spans[1].Marks[0] != interfaces.MarkStrong {
		t.Fatalf("unexpected bold span %#v", spans[1])
	}
	if spans[0].Text != "a " || len(spans[0].Marks) != 0 || spans[2].Text != " b" {
		t.Fatalf("unexpected plain spans %#v", spans)
	}
}

func TestScanInlineUnderscoreBoldAndItalic(t *testing.T) {
	spans := ScanInline("__strong__ and _soft_")
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %#v", spans)
	}
	if !spans[0].HasMark(interfaces.MarkStrong) || spans[0].Text != "strong" {
		t.Fatalf("unexpected span %#v", spans[0])
	}
	if !spans[2].HasMark(interfaces.MarkEm) || spans[2].Text != "soft" {
		t.Fatalf("unexpected span %#v", spans[2])
	}
}

func TestScanInlineItalic(t *testing.T) {
	spans := ScanInline("*italic*")
	if len(spans) != 1 || spans[0].Text != "italic" {
		t.Fatalf("unexpected spans %#v", spans)
	}
	if len(spans[0].Marks) != 1 || spans[0].Marks[0] != interfaces.MarkEm {
		t.Fatalf("expected only em mark, got %v", spans[0].Marks)
	}
}

func TestScanInlineUnmatchedDelimitersAreLiteral(t *testing.T) {
	cases := []string{"**oops", "a * b", "snake_case", "[not a link", "[label] (gap)"}
	for _, in := range cases {
		spans := ScanInline(in)
		if len(spans) != 1 || spans[0].Text != in || len(spans[0].Marks) != 0 || spans[0].Href != "" {
			t.Fatalf("ScanInline(%q) = %#v, want single literal span", in, spans)
		}
	}
}

func TestScanInlineEmptyYieldsOneSpan(t *testing.T) {
	spans := ScanInline("")
	if len(spans) != 1 || spans[0].Text != "" || len(spans[0].Marks) != 0 {
		t.Fatalf("expected one empty span, got %#v", spans)
	}
}

func TestScanInlineLinkKeepsTarget(t *testing.T) {
	spans := ScanInline(`see [the docs](http://x.test/a "Title") now`)
	want := []string{"see ", "the docs", " now"}
	got := spanTexts(spans)
	if len(got) != len(want) {
		t.Fatalf("unexpected spans %#v", spans)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d = %q, want %q", i, got[i], want[i])
		}
	}
	if spans[1].Href != "http://x.test/a" {
		t.Fatalf("expected link target, got %q", spans[1].Href)
	}
	if spans[0].Href != "" || spans[2].Href != "" {
		t.Fatalf("link target leaked into plain spans %#v", spans)
	}
}

func TestScanInlineNestedMarks(t *testing.T) {
	spans := ScanInline("**bold [link](/x) *both***")
	if len(spans) < 3 {
		t.Fatalf("unexpected spans %#v", spans)
	}
	if spans[1].Text != "link" || spans[1].Href != "/x" || !spans[1].HasMark(interfaces.MarkStrong) {
		t.Fatalf("unexpected link span %#v", spans[1])
	}
}

func TestScanInlineBackslashEscapes(t *testing.T) {
	spans := ScanInline(`1\. not \*em\* and C:\path`)
	if len(spans) != 1 || spans[0].Text != `1. not *em* and C:\path` {
		t.Fatalf("unexpected spans %#v", spans)
	}
}

func TestScanInlineMultiByteText(t *testing.T) {
	spans := ScanInline("blåbær **søt** æble")
	if len(spans) != 3 || spans[1].Text != "søt" || spans[2].Text != " æble" {
		t.Fatalf("unexpected spans %#v", spans)
	}
}

func TestScanInlineDecodesEntitiesAfterMarks(t *testing.T) {
	spans := ScanInline("Tom &amp; **Jerry &lt;3** &#42;not em&#42;")
	if got := spanTexts(spans); len(got) != 3 || got[0] != "Tom & " || got[1] != "Jerry <3" || got[2] != " *not em*" {
		t.Fatalf("unexpected spans %#v", spans)
	}
	if !spans[1].HasMark(interfaces.MarkStrong) || len(spans[2].Marks) != 0 {
		t.Fatalf("unexpected marks %#v", spans)
	}
}

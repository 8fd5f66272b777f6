package htmlmd

import (
	"strings"
	"testing"
)

func TestAutopWrapsLooseText(t *testing.T) {
	in := "First line\nsecond line\n\nNext paragraph\n\n<h2>Heading</h2>"
	want := "<p>First line<br>\nsecond line</p>\n\n<p>Next paragraph</p>\n\n<h2>Heading</h2>"
	if got := Autop(in); got != want {
		t.Fatalf("Autop = %q, want %q", got, want)
	}
}

func TestAutopLeavesBlockMarkup(t *testing.T) {
	in := "<p>Already wrapped</p>"
	if got := Autop(in); got != in {
		t.Fatalf("Autop = %q", got)
	}
}

func TestRestorePlaceholders(t *testing.T) {
	in := `text \_\_IMAGE\_PLACEHOLDER\_3\_\_ more __IMAGE_PLACEHOLDER_4__`
	want := "text __IMAGE_PLACEHOLDER_3__ more __IMAGE_PLACEHOLDER_4__"
	if got := RestorePlaceholders(in); got != want {
		t.Fatalf("RestorePlaceholders = %q, want %q", got, want)
	}
}

func TestReduceProducesMarkdownConventions(t *testing.T) {
	r := NewReducer()
	html := `<h2>Title</h2><p>Some <strong>bold</strong> and <em>soft</em> with <a href="http://x.test">a link</a>.</p><blockquote>Quoted</blockquote>`

	got, err := r.Reduce(html)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	for _, want := range []string{"## Title", "**bold**", "*soft*", "[a link](http://x.test)", "> Quoted"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestReduceKeepsPlaceholdersInOrder(t *testing.T) {
	r := NewReducer()
	html := "Intro\n\n__IMAGE_PLACEHOLDER_0__\n\n<a href=\"/full.jpg\">__IMAGE_PLACEHOLDER_1__</a>\n\nOutro"

	got, err := r.Reduce(html)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	first := strings.Index(got, "__IMAGE_PLACEHOLDER_0__")
	second := strings.Index(got, "__IMAGE_PLACEHOLDER_1__")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("placeholders missing or out of order:\n%s", got)
	}
	if strings.Contains(got, "/full.jpg") {
		t.Fatalf("expected anchor around placeholder to be unwrapped:\n%s", got)
	}
}

func TestReduceEmpty(t *testing.T) {
	got, err := NewReducer().Reduce("  \n ")
	if err != nil || got != "" {
		t.Fatalf("Reduce(empty) = %q, %v", got, err)
	}
}

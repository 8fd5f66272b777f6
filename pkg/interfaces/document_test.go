package interfaces

import (
	"encoding/json"
	"testing"
)

func TestTextBlockAlwaysCarriesMarkDefs(t *testing.T) {
	raw, err := json.Marshal(Block{Key: "b1", Kind: BlockParagraph, Spans: []Span{{Key: "s1", Text: "plain"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	defs, ok := wire["markDefs"].([]any)
	if !ok || len(defs) != 0 {
		t.Fatalf("expected empty markDefs array, got %s", raw)
	}
	if wire["style"] != "normal" {
		t.Fatalf("unexpected style in %s", raw)
	}
}

func TestImageBlockOmitsTextFields(t *testing.T) {
	raw, err := json.Marshal(Block{Key: "i1", Kind: BlockImage, Asset: "image-abc-jpg"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"_type":"image","_key":"i1","asset":{"_type":"reference","_ref":"image-abc-jpg"}}`
	if string(raw) != want {
		t.Fatalf("got %s want %s", raw, want)
	}

	var back Block
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != BlockImage || back.Asset != "image-abc-jpg" {
		t.Fatalf("unexpected block %#v", back)
	}
}

func TestLinkSpanRoundTripsThroughMarkDef(t *testing.T) {
	in := Block{Key: "b1", Kind: BlockParagraph, Spans: []Span{
		{Key: "s1", Text: "see "},
		{Key: "s2", Text: "docs", Marks: []Mark{MarkStrong}, Href: "https://example.test"},
	}}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Block
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Spans) != 2 || out.Spans[1].Href != "https://example.test" || !out.Spans[1].HasMark(MarkStrong) {
		t.Fatalf("unexpected round trip %#v from %s", out, raw)
	}
	if len(out.Spans[1].Marks) != 1 {
		t.Fatalf("link markDef key leaked into marks %#v", out.Spans[1].Marks)
	}
}

package identity

import "testing"

func TestDocumentIDIsPureFunctionOfLegacyID(t *testing.T) {
	if got := DocumentID("imported-", " 42 "); got != "imported-42" {
		t.Fatalf("DocumentID = %q", got)
	}
}

func TestKeysAreStableAndDistinct(t *testing.T) {
	a := BlockKey("imported-1", 0)
	if a != BlockKey("imported-1", 0) {
		t.Fatalf("expected stable block key")
	}
	if len(a) != keyLength {
		t.Fatalf("expected %d character key, got %q", keyLength, a)
	}
	if a == BlockKey("imported-1", 1) || a == BlockKey("imported-2", 0) {
		t.Fatalf("expected distinct keys per position and document")
	}
	if SpanKey(a, 0) == SpanKey(a, 1) {
		t.Fatalf("expected distinct span keys")
	}
}

func TestRecordUUIDs(t *testing.T) {
	if DocumentRecordUUID("imported-1") == AssetRecordUUID("imported-1") {
		t.Fatalf("expected document and asset namespaces to differ")
	}
	if UUID("  ").String() != "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected nil uuid for empty key")
	}
}

func TestAssetHandleIsContentAddressed(t *testing.T) {
	got := AssetHandle("image", []byte("bytes"), "Photo.JPG")
	if got != "image-daf529a73101c2be626b99fc6938163e7a27620b-jpg" {
		t.Fatalf("AssetHandle = %q", got)
	}
	if AssetHandle("", []byte("bytes"), "noext") != "file-daf529a73101c2be626b99fc6938163e7a27620b-bin" {
		t.Fatalf("expected defaults for empty kind and extension")
	}
}

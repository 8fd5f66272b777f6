package interfaces

import (
	"context"
	"errors"
	"maps"
	"strings"
)

// ErrDocumentNotFound is returned when a store has no document for an id.
var ErrDocumentNotFound = errors.New("document store: document not found")

// DocumentQuery filters documents by type and id prefix. Empty fields match everything.
type DocumentQuery struct {
	Type     string
	IDPrefix string
}

// Matches reports whether doc satisfies the query.
func (q DocumentQuery) Matches(doc *Document) bool {
	if doc == nil {
		return false
	}
	if q.Type != "" && doc.Type != q.Type {
		return false
	}
	if q.IDPrefix != "" && !strings.HasPrefix(doc.ID, q.IDPrefix) {
		return false
	}
	return true
}

// PatchRequest is a partial update of top-level document fields.
type PatchRequest struct {
	ID  string
	Set map[string]any
}

// PatchCommitter applies partial updates.
type PatchCommitter interface {
	CommitPatch(ctx context.Context, req PatchRequest) error
}

// DocumentStore is the create-or-replace / fetch / patch contract the importer
// and the repair passes run against.
type DocumentStore interface {
	PatchCommitter
	Upsert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	Fetch(ctx context.Context, query DocumentQuery) ([]*Document, error)
	Patch(id string) *Patch
}

// AssetStore uploads media bytes and returns an opaque asset handle.
type AssetStore interface {
	UploadAsset(ctx context.Context, kind string, data []byte, filename string) (string, error)
}

// Store is a backend serving both documents and assets.
type Store interface {
	DocumentStore
	AssetStore
}

// Patch accumulates field assignments and commits them in one call.
type Patch struct {
	committer PatchCommitter
	req       PatchRequest
}

// NewPatch starts a patch for id against committer.
func NewPatch(committer PatchCommitter, id string) *Patch {
	return &Patch{committer: committer, req: PatchRequest{ID: id, Set: map[string]any{}}}
}

// Set records field assignments. Later calls override earlier keys.
func (p *Patch) Set(fields map[string]any) *Patch {
	maps.Copy(p.req.Set, fields)
	return p
}

// Request exposes the accumulated request.
func (p *Patch) Request() PatchRequest {
	out := PatchRequest{ID: p.req.ID, Set: make(map[string]any, len(p.req.Set))}
	maps.Copy(out.Set, p.req.Set)
	return out
}

// Commit sends the patch to the store. An empty patch is a no-op.
func (p *Patch) Commit(ctx context.Context) error {
	if p == nil || p.committer == nil {
		return errors.New("document store: patch has no committer")
	}
	if len(p.req.Set) == 0 {
		return nil
	}
	return p.committer.CommitPatch(ctx, p.Request())
}

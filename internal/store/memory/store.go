// Package memory is an in-process document and asset store. It keeps deep
// copies so callers cannot mutate stored documents.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-wpmigrate/internal/identity"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// Store implements interfaces.DocumentStore and interfaces.AssetStore.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*interfaces.Document
	assets    map[string][]byte
}

var (
	_ interfaces.DocumentStore = (*Store)(nil)
	_ interfaces.AssetStore    = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		documents: map[string]*interfaces.Document{},
		assets:    map[string][]byte{},
	}
}

// Upsert creates or fully replaces the document with doc.ID.
func (s *Store) Upsert(ctx context.Context, doc *interfaces.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return errors.New("memory store: document id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc.Clone()
	return nil
}

// Get returns a copy of the document with id.
func (s *Store) Get(ctx context.Context, id string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, interfaces.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Fetch returns copies of every matching document ordered by id.
func (s *Store) Fetch(ctx context.Context, query interfaces.DocumentQuery) ([]*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*interfaces.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if query.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Patch starts a partial update of id.
func (s *Store) Patch(id string) *interfaces.Patch {
	return interfaces.NewPatch(s, id)
}

// CommitPatch applies a partial update.
func (s *Store) CommitPatch(ctx context.Context, req interfaces.PatchRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[req.ID]
	if !ok {
		return interfaces.ErrDocumentNotFound
	}
	updated, err := interfaces.ApplySet(doc, req.Set)
	if err != nil {
		return err
	}
	s.documents[req.ID] = updated
	return nil
}

// UploadAsset stores data under a content-addressed handle. Uploading the
// same bytes twice returns the same handle.
func (s *Store) UploadAsset(ctx context.Context, kind string, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("memory store: empty asset")
	}
	handle := identity.AssetHandle(kind, data, filename)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[handle] = append([]byte(nil), data...)
	return handle, nil
}

// Asset returns the bytes stored under handle.
func (s *Store) Asset(handle string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.assets[handle]
	return data, ok
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

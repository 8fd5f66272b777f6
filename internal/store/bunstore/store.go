// Package bunstore persists migrated documents and uploaded assets in a SQL
// database through go-repository-bun, with optional read caching.
package bunstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-wpmigrate/internal/identity"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
	"github.com/uptrace/bun"
)

const documentNamespace = "document"

// Store implements interfaces.DocumentStore and interfaces.AssetStore.
type Store struct {
	db           *bun.DB
	base         repository.Repository[*DocumentRecord]
	documents    repository.Repository[*DocumentRecord]
	assets       repository.Repository[*AssetRecord]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
	logger       interfaces.Logger
}

var (
	_ interfaces.DocumentStore = (*Store)(nil)
	_ interfaces.AssetStore    = (*Store)(nil)
)

// Option configures the store.
type Option func(*Store)

// WithCache serves document reads through go-repository-cache. Writes go to
// the base repository and flush the document namespace.
func WithCache(cacheService cache.CacheService, serializer cache.KeySerializer) Option {
	return func(s *Store) {
		if cacheService == nil || serializer == nil {
			return
		}
		s.documents = repositorycache.New(s.base, cacheService, serializer)
		s.cacheService = cacheService
		s.cachePrefix = cachePrefix(documentNamespace)
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a store on db. Call Migrate before first use.
func New(db *bun.DB, opts ...Option) *Store {
	base := NewDocumentRepository(db)
	s := &Store{
		db:        db,
		base:      base,
		documents: base,
		assets:    NewAssetRepository(db),
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Migrate creates the store tables when they do not exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: create table %T: %w", model, err)
		}
	}
	return nil
}

// Upsert creates or fully replaces the document with doc.ID.
func (s *Store) Upsert(ctx context.Context, doc *interfaces.Document) error {
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return errors.New("bunstore: document id is required")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("bunstore: encode %s: %w", doc.ID, err)
	}

	existing, err := s.base.GetByIdentifier(ctx, doc.ID)
	switch {
	case err == nil:
		existing.DocType = doc.Type
		existing.Payload = string(payload)
		existing.UpdatedAt = s.now()
		if _, err := s.base.Update(ctx, existing); err != nil {
			return fmt.Errorf("bunstore: replace %s: %w", doc.ID, err)
		}
	case isNotFound(err):
		now := s.now()
		record := &DocumentRecord{
			ID:         identity.DocumentRecordUUID(doc.ID),
			DocumentID: doc.ID,
			DocType:    doc.Type,
			Payload:    string(payload),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := s.base.Create(ctx, record); err != nil {
			return fmt.Errorf("bunstore: create %s: %w", doc.ID, err)
		}
	default:
		return mapRepositoryError(err, doc.ID)
	}
	return s.invalidate(ctx)
}

// Get returns the document with id.
func (s *Store) Get(ctx context.Context, id string) (*interfaces.Document, error) {
	record, err := s.documents.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id)
	}
	return decodeRecord(record)
}

// Fetch returns every matching document ordered by id.
func (s *Store) Fetch(ctx context.Context, query interfaces.DocumentQuery) ([]*interfaces.Document, error) {
	records, _, err := s.documents.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if query.Type != "" {
				q = q.Where("?TableAlias.doc_type = ?", query.Type)
			}
			if query.IDPrefix != "" {
				q = q.Where("substr(?TableAlias.document_id, 1, ?) = ?", len(query.IDPrefix), query.IDPrefix)
			}
			return q.OrderExpr("?TableAlias.document_id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("bunstore: fetch: %w", err)
	}
	out := make([]*interfaces.Document, 0, len(records))
	for _, record := range records {
		doc, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		if query.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Patch starts a partial update of id.
func (s *Store) Patch(id string) *interfaces.Patch {
	return interfaces.NewPatch(s, id)
}

// CommitPatch applies a partial update inside a read-modify-write on the
// base repository.
func (s *Store) CommitPatch(ctx context.Context, req interfaces.PatchRequest) error {
	record, err := s.base.GetByIdentifier(ctx, req.ID)
	if err != nil {
		return mapRepositoryError(err, req.ID)
	}
	doc, err := decodeRecord(record)
	if err != nil {
		return err
	}
	updated, err := interfaces.ApplySet(doc, req.Set)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("bunstore: encode %s: %w", req.ID, err)
	}
	record.Payload = string(payload)
	record.DocType = updated.Type
	record.UpdatedAt = s.now()
	if _, err := s.base.Update(ctx, record); err != nil {
		return fmt.Errorf("bunstore: patch %s: %w", req.ID, err)
	}
	return s.invalidate(ctx)
}

// UploadAsset stores data under its content handle. Re-uploading identical
// bytes returns the existing handle.
func (s *Store) UploadAsset(ctx context.Context, kind string, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("bunstore: empty asset")
	}
	handle := identity.AssetHandle(kind, data, filename)
	if _, err := s.assets.GetByIdentifier(ctx, handle); err == nil {
		return handle, nil
	} else if !isNotFound(err) {
		return "", mapRepositoryError(err, handle)
	}
	record := &AssetRecord{
		ID:        identity.AssetRecordUUID(handle),
		Handle:    handle,
		Kind:      kind,
		Filename:  filename,
		Size:      int64(len(data)),
		Data:      append([]byte(nil), data...),
		CreatedAt: s.now(),
	}
	if _, err := s.assets.Create(ctx, record); err != nil {
		return "", fmt.Errorf("bunstore: store asset %s: %w", filename, err)
	}
	s.logger.Debug("bunstore.asset.stored", "handle", handle, "size", record.Size)
	return handle, nil
}

// Asset returns the stored asset record for handle.
func (s *Store) Asset(ctx context.Context, handle string) (*AssetRecord, error) {
	record, err := s.assets.GetByIdentifier(ctx, handle)
	if err != nil {
		return nil, mapRepositoryError(err, handle)
	}
	return record, nil
}

// InvalidateCache drops cached document reads.
func (s *Store) InvalidateCache(ctx context.Context) error {
	return s.invalidate(ctx)
}

func (s *Store) invalidate(ctx context.Context) error {
	if s.cacheService == nil || s.cachePrefix == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, s.cachePrefix)
}

func decodeRecord(record *DocumentRecord) (*interfaces.Document, error) {
	if record == nil {
		return nil, interfaces.ErrDocumentNotFound
	}
	var doc interfaces.Document
	if err := json.Unmarshal([]byte(record.Payload), &doc); err != nil {
		return nil, fmt.Errorf("bunstore: decode %s: %w", record.DocumentID, err)
	}
	return &doc, nil
}

func isNotFound(err error) bool {
	return err != nil && goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, key)
	}
	return fmt.Errorf("bunstore: %s: %w", key, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}

package bunstore

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewDocumentRepository(db *bun.DB) repository.Repository[*DocumentRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DocumentRecord]{
		NewRecord: func() *DocumentRecord { return &DocumentRecord{} },
		GetID: func(r *DocumentRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *DocumentRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "document_id"
		},
		GetIdentifierValue: func(r *DocumentRecord) string {
			return r.DocumentID
		},
	})
}

func NewAssetRepository(db *bun.DB) repository.Repository[*AssetRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*AssetRecord]{
		NewRecord: func() *AssetRecord { return &AssetRecord{} },
		GetID: func(r *AssetRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *AssetRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "handle"
		},
		GetIdentifierValue: func(r *AssetRecord) string {
			return r.Handle
		},
	})
}

package bunstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentRecord stores one document as its wire payload.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:wpmigrate_documents,alias:d"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocumentID string    `bun:"document_id,notnull,unique" json:"document_id"`
	DocType    string    `bun:"doc_type,notnull" json:"doc_type"`
	Payload    string    `bun:"payload,notnull" json:"payload"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// AssetRecord stores uploaded bytes under their content handle.
type AssetRecord struct {
	bun.BaseModel `bun:"table:wpmigrate_assets,alias:a"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Handle    string    `bun:"handle,notnull,unique" json:"handle"`
	Kind      string    `bun:"kind,notnull" json:"kind"`
	Filename  string    `bun:"filename" json:"filename"`
	Size      int64     `bun:"size,notnull" json:"size"`
	Data      []byte    `bun:"data" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Models lists every table the store needs.
func Models() []any {
	return []any{
		(*DocumentRecord)(nil),
		(*AssetRecord)(nil),
	}
}

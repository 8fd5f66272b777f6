package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyLength = 12

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentID builds the store id of a migrated post. It is the idempotency
// key of the import: the same legacy id always maps to the same document.
func DocumentID(prefix, legacyID string) string {
	return prefix + strings.TrimSpace(legacyID)
}

// DocumentRecordUUID is the primary key of a document row in SQL stores.
func DocumentRecordUUID(documentID string) uuid.UUID {
	return UUID("wpmigrate:document:" + documentID)
}

// AssetRecordUUID is the primary key of an asset row in SQL stores.
func AssetRecordUUID(handle string) uuid.UUID {
	return UUID("wpmigrate:asset:" + handle)
}

// BlockKey returns the key of the block at position index of a document.
func BlockKey(documentID string, index int) string {
	return shortKey("wpmigrate:block:" + documentID + ":" + strconv.Itoa(index))
}

// SpanKey returns the key of the span at position index of a block.
func SpanKey(blockKey string, index int) string {
	return shortKey("wpmigrate:span:" + blockKey + ":" + strconv.Itoa(index))
}

func shortKey(key string) string {
	id := UUID(key)
	return strings.ReplaceAll(id.String(), "-", "")[:keyLength]
}

// AssetHandle derives the content-addressed handle `<kind>-<sha1>-<ext>` used
// by stores that host uploaded bytes themselves.
func AssetHandle(kind string, data []byte, filename string) string {
	sum := sha1.Sum(data)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}
	if kind == "" {
		kind = "file"
	}
	return kind + "-" + hex.EncodeToString(sum[:]) + "-" + ext
}

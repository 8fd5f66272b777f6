package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-wpmigrate/internal/batch"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

var ErrAuthorNotFound = errors.New("migrate: author document not found")

// AuthorResult summarises an author assignment run.
type AuthorResult struct {
	batch.Summary
	AuthorTitle string
}

// AuthorAssigner points every imported document at one author document.
type AuthorAssigner struct {
	store  interfaces.DocumentStore
	query  interfaces.DocumentQuery
	logger interfaces.Logger
}

// NewAuthorAssigner builds an assigner over the documents matching query.
func NewAuthorAssigner(store interfaces.DocumentStore, query interfaces.DocumentQuery, logger interfaces.Logger) *AuthorAssigner {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &AuthorAssigner{store: store, query: query, logger: logger}
}

// Assign verifies authorID exists, then patches the author reference onto
// every matching document that does not already carry it.
func (a *AuthorAssigner) Assign(ctx context.Context, authorID string) (AuthorResult, error) {
	var result AuthorResult
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return result, errors.New("migrate: author id is required")
	}
	if a.store == nil {
		return result, errors.New("migrate: author assignment requires a document store")
	}

	author, err := a.store.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			return result, fmt.Errorf("%w: %s", ErrAuthorNotFound, authorID)
		}
		return result, fmt.Errorf("migrate: load author: %w", err)
	}
	result.AuthorTitle = author.Title

	docs, err := a.store.Fetch(ctx, a.query)
	if err != nil {
		return result, fmt.Errorf("migrate: fetch documents: %w", err)
	}
	ref := interfaces.NewReference(authorID)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if doc.Author != nil && doc.Author.Ref == authorID {
			result.Skip()
			continue
		}
		err := a.store.Patch(doc.ID).Set(map[string]any{
			"author": map[string]any{"_type": ref.Type, "_ref": ref.Ref},
		}).Commit(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logging.WithItemContext(a.logger, "", doc.ID, "").Error("author.assign.failed", "error", err)
			result.Fail(doc.ID, err)
			continue
		}
		result.Succeed()
	}

	a.logger.Info("author.assign.summary",
		"author", authorID,
		"total", result.Total,
		"assigned", result.Succeeded,
		"unchanged", result.Skipped,
		"failed", result.Failed(),
	)
	return result, nil
}

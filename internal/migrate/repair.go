package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-wpmigrate/internal/batch"
	"github.com/goliatone/go-wpmigrate/internal/excerpt"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// ExcerptChange describes one repaired excerpt.
type ExcerptChange struct {
	DocumentID string
	Reasons    []string
	Before     string
	After      string
}

// RepairOptions controls an excerpt repair run.
type RepairOptions struct {
	DryRun bool
}

// RepairResult summarises an excerpt repair run. Skipped counts documents
// whose excerpt was already clean or could not be improved.
type RepairResult struct {
	batch.Summary
	Changes []ExcerptChange
}

// ExcerptRepairer regenerates broken excerpts of imported documents from
// their content blocks. It only ever patches the excerpt field.
type ExcerptRepairer struct {
	store  interfaces.DocumentStore
	query  interfaces.DocumentQuery
	opts   excerpt.Options
	logger interfaces.Logger
}

// NewExcerptRepairer builds a repairer over the documents matching query.
func NewExcerptRepairer(store interfaces.DocumentStore, query interfaces.DocumentQuery, opts excerpt.Options, logger interfaces.Logger) *ExcerptRepairer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &ExcerptRepairer{store: store, query: query, opts: opts, logger: logger}
}

// Repair fetches every matching document and patches each excerpt that is
// empty or carries legacy artifacts. Failing to fetch is fatal; a failed
// patch is recorded and the run continues.
func (r *ExcerptRepairer) Repair(ctx context.Context, opts RepairOptions) (RepairResult, error) {
	var result RepairResult
	if r.store == nil {
		return result, errors.New("migrate: excerpt repair requires a document store")
	}
	docs, err := r.store.Fetch(ctx, r.query)
	if err != nil {
		return result, fmt.Errorf("migrate: fetch documents: %w", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger := logging.WithItemContext(r.logger, "", doc.ID, "")

		reasons := excerpt.Diagnose(doc.Excerpt)
		if len(reasons) == 0 {
			result.Skip()
			continue
		}
		repaired := excerpt.FromBlocks(doc.Content, r.opts)
		if repaired == "" || repaired == doc.Excerpt {
			logger.Debug("excerpts.repair.no_text", "reasons", reasons)
			result.Skip()
			continue
		}

		change := ExcerptChange{DocumentID: doc.ID, Reasons: reasons, Before: doc.Excerpt, After: repaired}
		if !opts.DryRun {
			err := r.store.Patch(doc.ID).Set(map[string]any{"excerpt": repaired}).Commit(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, ctxErr
				}
				logger.Error("excerpts.repair.failed", "error", err)
				result.Fail(doc.ID, err)
				continue
			}
		}
		result.Succeed()
		result.Changes = append(result.Changes, change)
		logger.Debug("excerpts.repair.patched", "reasons", reasons, "dry_run", opts.DryRun)
	}

	r.logger.Info("excerpts.repair.summary",
		"total", result.Total,
		"repaired", result.Succeeded,
		"clean", result.Skipped,
		"failed", result.Failed(),
	)
	return result, nil
}

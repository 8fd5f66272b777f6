package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/batch"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// DocumentValidator checks a synthesized document before it is written.
type DocumentValidator interface {
	Validate(doc *interfaces.Document) error
}

// ImportOptions controls an import run.
type ImportOptions struct {
	DryRun bool
}

// ImportResult summarises an import run. Planned counts documents a dry run
// built and validated without writing. UnresolvedImages counts image tags
// dropped because their URL had no asset handle.
type ImportResult struct {
	batch.Summary
	Planned          int
	UnresolvedImages int
	DocumentIDs      []string
}

// Importer converts, validates and upserts posts one at a time.
type Importer struct {
	store     interfaces.DocumentStore
	converter *Converter
	synth     *Synthesizer
	validator DocumentValidator
	logger    interfaces.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImportLogger sets the importer logger.
func WithImportLogger(logger interfaces.Logger) ImporterOption {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithValidator validates every document before it is written.
func WithValidator(validator DocumentValidator) ImporterOption {
	return func(i *Importer) {
		i.validator = validator
	}
}

// WithConverter replaces the default converter.
func WithConverter(converter *Converter) ImporterOption {
	return func(i *Importer) {
		if converter != nil {
			i.converter = converter
		}
	}
}

// NewImporter builds an importer writing to store.
func NewImporter(store interfaces.DocumentStore, synth *Synthesizer, opts ...ImporterOption) *Importer {
	if synth == nil {
		synth = NewSynthesizer(SynthesizerConfig{})
	}
	i := &Importer{
		store:     store,
		converter: NewConverter(),
		synth:     synth,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Build converts and synthesizes one post without touching the store.
func (i *Importer) Build(post posts.RawPost, m assets.Map) (*interfaces.Document, Conversion, error) {
	conv, err := i.converter.Convert(post.Content, m)
	if err != nil {
		return nil, conv, err
	}
	doc, err := i.synth.Synthesize(post, conv.Blocks)
	if err != nil {
		return nil, conv, err
	}
	return doc, conv, nil
}

// Import upserts one document per post. A failed post is recorded and the
// run continues; only context cancellation stops it early.
func (i *Importer) Import(ctx context.Context, items []posts.RawPost, m assets.Map, opts ImportOptions) (ImportResult, error) {
	var result ImportResult
	if i.store == nil && !opts.DryRun {
		return result, errors.New("migrate: importer requires a document store")
	}

	for _, post := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		docID := i.synth.DocumentID(post)
		logger := logging.WithItemContext(i.logger, post.ID.String(), docID, "")

		doc, conv, err := i.Build(post, m)
		if err != nil {
			logger.Warn("import.post.build_failed", "error", err)
			result.Fail(docID, err)
			continue
		}
		result.UnresolvedImages += len(conv.Unresolved)
		if len(conv.Unresolved) > 0 {
			logger.Debug("import.post.unresolved_images", "count", len(conv.Unresolved))
		}

		if i.validator != nil {
			if err := i.validator.Validate(doc); err != nil {
				logger.Warn("import.post.invalid", "error", err)
				result.Fail(docID, err)
				continue
			}
		}

		if opts.DryRun {
			result.Total++
			result.Planned++
			result.DocumentIDs = append(result.DocumentIDs, docID)
			logger.Debug("import.post.planned", "blocks", len(doc.Content))
			continue
		}

		if err := i.store.Upsert(ctx, doc); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logger.Error("import.post.failed", "title", doc.Title, "error", err)
			result.Fail(docID, fmt.Errorf("upsert: %w", err))
			continue
		}
		result.Succeed()
		result.DocumentIDs = append(result.DocumentIDs, docID)
		logger.Debug("import.post.upserted", "blocks", len(doc.Content))
	}

	i.logger.Info("import.summary",
		"total", result.Total,
		"imported", result.Succeeded,
		"planned", result.Planned,
		"failed", result.Failed(),
		"unresolved_images", result.UnresolvedImages,
	)
	return result, nil
}

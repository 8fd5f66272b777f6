package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-wpmigrate/internal/batch"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// KindImage is the asset kind used for legacy post images.
const KindImage = "image"

// FileSource reads the local copy of a legacy media URL.
type FileSource interface {
	Read(url string) ([]byte, string, error)
}

// UploadOptions controls an upload run.
type UploadOptions struct {
	DryRun bool
}

// UploadResult summarises an upload run. Skipped counts URLs already mapped;
// Planned counts URLs a dry run would have uploaded.
type UploadResult struct {
	batch.Summary
	Planned int
}

// Uploader pushes local media files to the asset store one at a time.
type Uploader struct {
	store  interfaces.AssetStore
	files  FileSource
	logger interfaces.Logger
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithLogger sets the uploader logger.
func WithLogger(logger interfaces.Logger) UploaderOption {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewUploader builds an uploader reading files from files.
func NewUploader(store interfaces.AssetStore, files FileSource, opts ...UploaderOption) *Uploader {
	u := &Uploader{store: store, files: files, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload uploads every distinct URL of urls missing from m and records the
// returned handle in m. Per-file failures are recorded in the result and the
// URL stays unmapped. Only context cancellation stops the run early.
func (u *Uploader) Upload(ctx context.Context, urls []string, m Map, opts UploadOptions) (UploadResult, error) {
	var result UploadResult
	if u.store == nil && !opts.DryRun {
		return result, errors.New("assets: uploader requires an asset store")
	}
	if m == nil {
		return result, errors.New("assets: uploader requires a map")
	}

	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		logger := logging.WithItemContext(u.logger, "", "", url)
		if _, ok := m.Lookup(url); ok {
			result.Skip()
			continue
		}

		data, filename, err := u.files.Read(url)
		if err != nil {
			logger.Warn("assets.upload.missing_file", "error", err)
			result.Fail(url, err)
			continue
		}

		if opts.DryRun {
			logger.Debug("assets.upload.planned", "filename", filename, "bytes", len(data))
			result.Total++
			result.Planned++
			continue
		}

		handle, err := u.store.UploadAsset(ctx, KindImage, data, filename)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logger.Error("assets.upload.failed", "filename", filename, "error", err)
			result.Fail(url, fmt.Errorf("upload %s: %w", filename, err))
			continue
		}
		m.Add(url, handle)
		result.Succeed()
		logger.Debug("assets.upload.completed", "filename", filename, "asset", handle)
	}

	u.logger.Info("assets.upload.summary",
		"total", result.Total,
		"uploaded", result.Succeeded,
		"skipped", result.Skipped,
		"planned", result.Planned,
		"failed", result.Failed(),
	)
	return result, nil
}

// Package wpmigrate moves a WordPress blog into a structured document store:
// it extracts posts, uploads their images, converts the HTML bodies into
// portable rich text, repairs excerpts and reports images it could not find.
package wpmigrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	migrationcmd "github.com/goliatone/go-wpmigrate/internal/commands/migration"
	"github.com/goliatone/go-wpmigrate/internal/di"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/report"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// ErrPostNotFound is returned by Preview when the export has no such post.
var ErrPostNotFound = errors.New("wpmigrate: post not found in export")

type (
	// ExtractResult reports the export written by Extract.
	ExtractResult = migrationcmd.ExtractResult
	// UploadResult summarises an asset upload run.
	UploadResult = assets.UploadResult
	// ImportResult summarises an import run.
	ImportResult = migrate.ImportResult
	// RepairResult summarises an excerpt repair run.
	RepairResult = migrate.RepairResult
	// AuthorResult summarises an author assignment run.
	AuthorResult = migrate.AuthorResult
	// GapReport is the reconciliation of image references.
	GapReport = report.GapReport
	// Document is a synthesized structured document.
	Document = interfaces.Document
)

// RunResult collects the summaries of a full pipeline run. Stages that did
// not run are nil.
type RunResult struct {
	Upload *UploadResult
	Import *ImportResult
	Repair *RepairResult
}

// Preview shows one post at every stage of conversion.
type Preview struct {
	PostID     int64
	Markup     string
	HTML       string
	Document   *Document
	Unresolved []string
}

// JSON renders the previewed document in its wire format.
func (p Preview) JSON() ([]byte, error) {
	return json.MarshalIndent(p.Document, "", "  ")
}

// Module is the migration runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Extract writes the structured export from the WordPress database.
func (m *Module) Extract(ctx context.Context) (ExtractResult, error) {
	var result ExtractResult
	handler, err := m.container.ExtractHandler(func(r ExtractResult) { result = r })
	if err != nil {
		return result, err
	}
	err = handler.Execute(ctx, migrationcmd.ExtractPostsCommand{Output: m.container.Config.Source.ExportPath})
	return result, err
}

// UploadAssets uploads every image the asset map does not know yet.
func (m *Module) UploadAssets(ctx context.Context, dryRun bool) (UploadResult, error) {
	var result UploadResult
	cfg := m.container.Config
	err := m.container.UploadHandler(func(r UploadResult) { result = r }).Execute(ctx, migrationcmd.UploadAssetsCommand{
		ExportPath: cfg.Source.ExportPath,
		MapPath:    cfg.Assets.MapPath,
		DryRun:     dryRun,
	})
	return result, err
}

// Import converts and upserts every exported post.
func (m *Module) Import(ctx context.Context, dryRun bool) (ImportResult, error) {
	var result ImportResult
	cfg := m.container.Config
	err := m.container.ImportHandler(func(r ImportResult) { result = r }).Execute(ctx, migrationcmd.ImportPostsCommand{
		ExportPath: cfg.Source.ExportPath,
		MapPath:    cfg.Assets.MapPath,
		DryRun:     dryRun || cfg.Import.DryRun,
	})
	return result, err
}

// RepairExcerpts rewrites stored excerpts that carry escape artifacts.
func (m *Module) RepairExcerpts(ctx context.Context, dryRun bool) (RepairResult, error) {
	var result RepairResult
	err := m.container.RepairHandler(func(r RepairResult) { result = r }).Execute(ctx, migrationcmd.RepairExcerptsCommand{DryRun: dryRun})
	return result, err
}

// AssignAuthor references authorID from every imported post. An empty id
// falls back to the configured author.
func (m *Module) AssignAuthor(ctx context.Context, authorID string) (AuthorResult, error) {
	if authorID == "" {
		authorID = m.container.Config.Import.AuthorID
	}
	var result AuthorResult
	err := m.container.AuthorHandler(func(r AuthorResult) { result = r }).Execute(ctx, migrationcmd.AssignAuthorCommand{AuthorID: authorID})
	return result, err
}

// Report writes the gap report and returns it.
func (m *Module) Report(ctx context.Context) (GapReport, error) {
	var result GapReport
	cfg := m.container.Config
	err := m.container.ReportHandler(func(r GapReport) { result = r }).Execute(ctx, migrationcmd.ReportGapsCommand{
		ExportPath: cfg.Source.ExportPath,
		MapPath:    cfg.Assets.MapPath,
		OutputPath: cfg.Report.OutputPath,
	})
	return result, err
}

// Run uploads assets, imports posts and repairs excerpts, stopping at the
// first stage that fails.
func (m *Module) Run(ctx context.Context, dryRun bool) (RunResult, error) {
	var run RunResult

	uploaded, err := m.UploadAssets(ctx, dryRun)
	if err != nil {
		return run, fmt.Errorf("upload assets: %w", err)
	}
	run.Upload = &uploaded

	imported, err := m.Import(ctx, dryRun)
	if err != nil {
		return run, fmt.Errorf("import posts: %w", err)
	}
	run.Import = &imported

	repaired, err := m.RepairExcerpts(ctx, dryRun)
	if err != nil {
		return run, fmt.Errorf("repair excerpts: %w", err)
	}
	run.Repair = &repaired
	return run, nil
}

// Preview runs one exported post through the conversion pipeline without
// touching the store.
func (m *Module) Preview(ctx context.Context, postID int64) (Preview, error) {
	cfg := m.container.Config
	items, err := posts.JSONFile{Path: cfg.Source.ExportPath}.Posts(ctx)
	if err != nil {
		return Preview{}, err
	}
	amap, err := assets.LoadMap(cfg.Assets.MapPath)
	if err != nil {
		return Preview{}, err
	}

	for _, post := range items {
		if int64(post.ID) != postID {
			continue
		}
		doc, conv, err := m.container.Importer().Build(post, amap)
		if err != nil {
			return Preview{}, err
		}
		urls := make([]string, len(conv.Images))
		for i, ref := range conv.Images {
			urls[i] = ref.URL
		}
		html, err := m.container.Renderer().RenderWithImages(conv.Markup, urls)
		if err != nil {
			return Preview{}, err
		}
		return Preview{
			PostID:     postID,
			Markup:     conv.Markup,
			HTML:       html,
			Document:   doc,
			Unresolved: conv.Unresolved,
		}, nil
	}
	return Preview{}, fmt.Errorf("%w: %d", ErrPostNotFound, postID)
}

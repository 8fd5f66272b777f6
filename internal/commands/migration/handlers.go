package migrationcmd

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/commands"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/report"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	extractOperation = "migration.extract_posts"
	uploadOperation  = "migration.upload_assets"
	importOperation  = "migration.import_posts"
	repairOperation  = "migration.repair_excerpts"
	authorOperation  = "migration.assign_author"
	reportOperation  = "migration.report_gaps"
)

// StageTimeout bounds stages that walk the whole export. Uploads and imports
// run one item at a time against a remote store, so they outlive the
// default command timeout.
const StageTimeout = 2 * time.Hour

// ErrSourceRequired is returned when extraction runs without a post source.
var ErrSourceRequired = errors.New("migration command: post source required")

var (
	_ command.Commander[ExtractPostsCommand]   = (*ExtractPostsHandler)(nil)
	_ command.Commander[UploadAssetsCommand]   = (*UploadAssetsHandler)(nil)
	_ command.Commander[ImportPostsCommand]    = (*ImportPostsHandler)(nil)
	_ command.Commander[RepairExcerptsCommand] = (*RepairExcerptsHandler)(nil)
	_ command.Commander[AssignAuthorCommand]   = (*AssignAuthorHandler)(nil)
	_ command.Commander[ReportGapsCommand]     = (*ReportGapsHandler)(nil)
)

// ResultFunc receives the outcome of a successful stage run.
type ResultFunc[R any] func(R)

func (fn ResultFunc[R]) emit(result R) {
	if fn != nil {
		fn(result)
	}
}

// ExtractResult reports how many posts were written to the export.
type ExtractResult struct {
	Output string
	Posts  int
}

// ExtractPostsHandler writes the structured export from a post source.
type ExtractPostsHandler struct {
	inner *commands.Handler[ExtractPostsCommand]
}

// NewExtractPostsHandler creates a handler reading posts from source.
func NewExtractPostsHandler(source posts.Source, logger interfaces.Logger, onResult ResultFunc[ExtractResult], opts ...commands.HandlerOption[ExtractPostsCommand]) *ExtractPostsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExtractPostsCommand) error {
		if source == nil {
			return ErrSourceRequired
		}
		items, err := source.Posts(ctx)
		if err != nil {
			return err
		}
		if err := posts.WriteFile(msg.Output, items); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"output":     msg.Output,
			"post_count": len(items),
		}).Info("migration.command.extract_posts.completed")
		onResult.emit(ExtractResult{Output: msg.Output, Posts: len(items)})
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExtractPostsCommand]{
		commands.WithLogger[ExtractPostsCommand](baseLogger),
		commands.WithOperation[ExtractPostsCommand](extractOperation),
		commands.WithMessageFields(func(msg ExtractPostsCommand) map[string]any {
			return map[string]any{"output": msg.Output}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExtractPostsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExtractPostsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExtractPostsCommand].
func (h *ExtractPostsHandler) Execute(ctx context.Context, msg ExtractPostsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UploadAssetsHandler pushes the export's images to the asset store and
// persists the updated asset map.
type UploadAssetsHandler struct {
	inner *commands.Handler[UploadAssetsCommand]
}

// NewUploadAssetsHandler creates a handler bound to the supplied uploader.
func NewUploadAssetsHandler(uploader *assets.Uploader, logger interfaces.Logger, onResult ResultFunc[assets.UploadResult], opts ...commands.HandlerOption[UploadAssetsCommand]) *UploadAssetsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UploadAssetsCommand) error {
		items, err := posts.JSONFile{Path: msg.ExportPath}.Posts(ctx)
		if err != nil {
			return err
		}
		m, err := assets.LoadMap(msg.MapPath)
		if err != nil {
			return err
		}

		result, err := uploader.Upload(ctx, migrate.CollectImageURLs(items), m, assets.UploadOptions{DryRun: msg.DryRun})
		// Handles recorded before a cancellation are still worth keeping.
		if !msg.DryRun && result.Succeeded > 0 {
			if saveErr := m.Save(msg.MapPath); saveErr != nil {
				return errors.Join(err, saveErr)
			}
		}
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, logging.SummaryFields(result.Summary, "uploaded_count", map[string]any{
			"planned_count": result.Planned,
			"dry_run":       msg.DryRun,
		})).Info("migration.command.upload_assets.completed")
		onResult.emit(result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[UploadAssetsCommand]{
		commands.WithLogger[UploadAssetsCommand](baseLogger),
		commands.WithOperation[UploadAssetsCommand](uploadOperation),
		commands.WithTimeout[UploadAssetsCommand](StageTimeout),
		commands.WithMessageFields(func(msg UploadAssetsCommand) map[string]any {
			fields := map[string]any{
				"export_path": msg.ExportPath,
				"map_path":    msg.MapPath,
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UploadAssetsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UploadAssetsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UploadAssetsCommand].
func (h *UploadAssetsHandler) Execute(ctx context.Context, msg UploadAssetsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportPostsHandler converts and upserts every exported post.
type ImportPostsHandler struct {
	inner *commands.Handler[ImportPostsCommand]
}

// NewImportPostsHandler creates a handler bound to the supplied importer.
func NewImportPostsHandler(importer *migrate.Importer, logger interfaces.Logger, onResult ResultFunc[migrate.ImportResult], opts ...commands.HandlerOption[ImportPostsCommand]) *ImportPostsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ImportPostsCommand) error {
		items, err := posts.JSONFile{Path: msg.ExportPath}.Posts(ctx)
		if err != nil {
			return err
		}
		m, err := assets.LoadMap(msg.MapPath)
		if err != nil {
			return err
		}

		result, err := importer.Import(ctx, items, m, migrate.ImportOptions{DryRun: msg.DryRun})
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, logging.SummaryFields(result.Summary, "imported_count", map[string]any{
			"planned_count":    result.Planned,
			"unresolved_count": result.UnresolvedImages,
			"dry_run":          msg.DryRun,
		})).Info("migration.command.import_posts.completed")
		onResult.emit(result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportPostsCommand]{
		commands.WithLogger[ImportPostsCommand](baseLogger),
		commands.WithOperation[ImportPostsCommand](importOperation),
		commands.WithTimeout[ImportPostsCommand](StageTimeout),
		commands.WithMessageFields(func(msg ImportPostsCommand) map[string]any {
			fields := map[string]any{
				"export_path": msg.ExportPath,
				"map_path":    msg.MapPath,
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportPostsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportPostsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportPostsCommand].
func (h *ImportPostsHandler) Execute(ctx context.Context, msg ImportPostsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RepairExcerptsHandler runs the excerpt repair pass.
type RepairExcerptsHandler struct {
	inner *commands.Handler[RepairExcerptsCommand]
}

// NewRepairExcerptsHandler creates a handler bound to the supplied repairer.
func NewRepairExcerptsHandler(repairer *migrate.ExcerptRepairer, logger interfaces.Logger, onResult ResultFunc[migrate.RepairResult], opts ...commands.HandlerOption[RepairExcerptsCommand]) *RepairExcerptsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RepairExcerptsCommand) error {
		result, err := repairer.Repair(ctx, migrate.RepairOptions{DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, logging.SummaryFields(result.Summary, "repaired_count", map[string]any{
			"dry_run": msg.DryRun,
		})).Info("migration.command.repair_excerpts.completed")
		onResult.emit(result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RepairExcerptsCommand]{
		commands.WithLogger[RepairExcerptsCommand](baseLogger),
		commands.WithOperation[RepairExcerptsCommand](repairOperation),
		commands.WithTimeout[RepairExcerptsCommand](StageTimeout),
		commands.WithTelemetry(commands.DefaultTelemetry[RepairExcerptsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RepairExcerptsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RepairExcerptsCommand].
func (h *RepairExcerptsHandler) Execute(ctx context.Context, msg RepairExcerptsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// AssignAuthorHandler references an author document from every imported post.
type AssignAuthorHandler struct {
	inner *commands.Handler[AssignAuthorCommand]
}

// NewAssignAuthorHandler creates a handler bound to the supplied assigner.
func NewAssignAuthorHandler(assigner *migrate.AuthorAssigner, logger interfaces.Logger, onResult ResultFunc[migrate.AuthorResult], opts ...commands.HandlerOption[AssignAuthorCommand]) *AssignAuthorHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg AssignAuthorCommand) error {
		result, err := assigner.Assign(ctx, msg.AuthorID)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, logging.SummaryFields(result.Summary, "updated_count", map[string]any{
			"author": result.AuthorTitle,
		})).Info("migration.command.assign_author.completed")
		onResult.emit(result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[AssignAuthorCommand]{
		commands.WithLogger[AssignAuthorCommand](baseLogger),
		commands.WithOperation[AssignAuthorCommand](authorOperation),
		commands.WithTimeout[AssignAuthorCommand](StageTimeout),
		commands.WithMessageFields(func(msg AssignAuthorCommand) map[string]any {
			return map[string]any{"author_id": msg.AuthorID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[AssignAuthorCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AssignAuthorHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[AssignAuthorCommand].
func (h *AssignAuthorHandler) Execute(ctx context.Context, msg AssignAuthorCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReportGapsHandler writes the gap report.
type ReportGapsHandler struct {
	inner *commands.Handler[ReportGapsCommand]
}

// NewReportGapsHandler creates a handler resolving local copies through files.
// analyzerOpts are applied to every analyzer the handler builds.
func NewReportGapsHandler(files report.LocalFiles, logger interfaces.Logger, onResult ResultFunc[report.GapReport], analyzerOpts []report.Option, opts ...commands.HandlerOption[ReportGapsCommand]) *ReportGapsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ReportGapsCommand) error {
		items, err := posts.JSONFile{Path: msg.ExportPath}.Posts(ctx)
		if err != nil {
			return err
		}
		m := assets.Map{}
		if msg.MapPath != "" {
			if m, err = assets.LoadMap(msg.MapPath); err != nil {
				return err
			}
		}
		previous, err := report.ReadSummary(msg.OutputPath)
		if err != nil {
			return err
		}

		gaps := report.NewAnalyzer(m, files, analyzerOpts...).Analyze(items)
		if err := report.WriteFile(msg.OutputPath, gaps, previous); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"output":          msg.OutputPath,
			"reference_count": gaps.TotalReferences,
			"resolved_count":  gaps.Resolved,
			"missing_count":   gaps.Missing(),
			"affected_posts":  len(gaps.Posts),
		}).Info("migration.command.report_gaps.completed")
		onResult.emit(gaps)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ReportGapsCommand]{
		commands.WithLogger[ReportGapsCommand](baseLogger),
		commands.WithOperation[ReportGapsCommand](reportOperation),
		commands.WithMessageFields(func(msg ReportGapsCommand) map[string]any {
			return map[string]any{
				"export_path": msg.ExportPath,
				"output_path": msg.OutputPath,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ReportGapsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReportGapsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReportGapsCommand].
func (h *ReportGapsHandler) Execute(ctx context.Context, msg ReportGapsCommand) error {
	return h.inner.Execute(ctx, msg)
}

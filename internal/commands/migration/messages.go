package migrationcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	extractPostsMessageType   = "wpmigrate.migration.extract_posts"
	uploadAssetsMessageType   = "wpmigrate.migration.upload_assets"
	importPostsMessageType    = "wpmigrate.migration.import_posts"
	repairExcerptsMessageType = "wpmigrate.migration.repair_excerpts"
	assignAuthorMessageType   = "wpmigrate.migration.assign_author"
	reportGapsMessageType     = "wpmigrate.migration.report_gaps"
)

// ExtractPostsCommand reads published posts from the WordPress database and
// writes the structured JSON export to Output.
type ExtractPostsCommand struct {
	// Output is the export file written by the command.
	Output string `json:"output"`
}

// Type implements command.Message.
func (ExtractPostsCommand) Type() string { return extractPostsMessageType }

// Validate ensures an output path is present.
func (cmd ExtractPostsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Output, validation.Required, validation.By(notBlank(extractPostsMessageType+".output_required", "output is required"))),
	)
}

// UploadAssetsCommand uploads every image referenced by the export that the
// asset map does not know yet.
type UploadAssetsCommand struct {
	ExportPath string `json:"export_path"`
	MapPath    string `json:"map_path"`
	// DryRun counts the uploads without touching the store or the map file.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (UploadAssetsCommand) Type() string { return uploadAssetsMessageType }

// Validate ensures both file paths are present.
func (cmd UploadAssetsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ExportPath, validation.Required, validation.By(notBlank(uploadAssetsMessageType+".export_required", "export path is required"))),
		validation.Field(&cmd.MapPath, validation.Required, validation.By(notBlank(uploadAssetsMessageType+".map_required", "asset map path is required"))),
	)
}

// ImportPostsCommand converts every exported post and upserts the result.
type ImportPostsCommand struct {
	ExportPath string `json:"export_path"`
	MapPath    string `json:"map_path"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportPostsCommand) Type() string { return importPostsMessageType }

// Validate ensures both file paths are present.
func (cmd ImportPostsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ExportPath, validation.Required, validation.By(notBlank(importPostsMessageType+".export_required", "export path is required"))),
		validation.Field(&cmd.MapPath, validation.Required, validation.By(notBlank(importPostsMessageType+".map_required", "asset map path is required"))),
	)
}

// RepairExcerptsCommand rewrites stored excerpts that still carry escape
// artifacts.
type RepairExcerptsCommand struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (RepairExcerptsCommand) Type() string { return repairExcerptsMessageType }

// Validate implements command.Message. The command has no required input.
func (RepairExcerptsCommand) Validate() error { return nil }

// AssignAuthorCommand references AuthorID from every imported post.
type AssignAuthorCommand struct {
	AuthorID string `json:"author_id"`
}

// Type implements command.Message.
func (AssignAuthorCommand) Type() string { return assignAuthorMessageType }

// Validate ensures the author document id is present.
func (cmd AssignAuthorCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.AuthorID, validation.Required, validation.By(notBlank(assignAuthorMessageType+".author_required", "author id is required"))),
	)
}

// ReportGapsCommand reconciles image references against the asset map and
// the media tree and writes the gap report to OutputPath.
type ReportGapsCommand struct {
	ExportPath string `json:"export_path"`
	MapPath    string `json:"map_path"`
	OutputPath string `json:"output_path"`
}

// Type implements command.Message.
func (ReportGapsCommand) Type() string { return reportGapsMessageType }

// Validate ensures the export and output paths are present. The asset map is
// optional: without one every reference resolves through the media tree only.
func (cmd ReportGapsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ExportPath, validation.Required, validation.By(notBlank(reportGapsMessageType+".export_required", "export path is required"))),
		validation.Field(&cmd.OutputPath, validation.Required, validation.By(notBlank(reportGapsMessageType+".output_required", "output path is required"))),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

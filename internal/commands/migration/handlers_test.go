package migrationcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/excerpt"
	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/report"
	"github.com/goliatone/go-wpmigrate/internal/store/memory"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

const (
	presentURL = "http://blog.test/wp-content/uploads/2014/05/oslo.jpg"
	absentURL  = "http://blog.test/wp-content/uploads/2013/01/gone.jpg"
)

var importedPosts = interfaces.DocumentQuery{Type: migrate.DefaultDocumentType, IDPrefix: migrate.DefaultIDPrefix}

type captureLogger struct {
	fields       map[string]any
	infoMessages []string
}

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(msg string, _ ...any) {
	c.infoMessages = append(c.infoMessages, msg)
}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}
func (c *captureLogger) Fatal(string, ...any) {}

func (c *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	if c.fields == nil {
		c.fields = map[string]any{}
	}
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (c *captureLogger) WithContext(context.Context) interfaces.Logger { return c }

func (c *captureLogger) logged(msg string) bool {
	for _, m := range c.infoMessages {
		if m == msg {
			return true
		}
	}
	return false
}

type staticSource []posts.RawPost

func (s staticSource) Posts(context.Context) ([]posts.RawPost, error) { return s, nil }

func samplePosts() []posts.RawPost {
	return []posts.RawPost{
		{
			ID:      7,
			Title:   "Harbour walk",
			Content: "A walk by the water.\n\n<img src=\"" + presentURL + "\" />\n\n<img src=\"" + absentURL + "\" />",
			Date:    "2014-05-02 08:00:00",
		},
		{
			ID:      8,
			Title:   "Plain post",
			Content: "Only <em>text</em> here.",
			Date:    "2014-06-01 12:00:00",
		},
	}
}

func writeExport(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "posts.json")
	if err := posts.WriteFile(path, samplePosts()); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func mediaTree() *images.Locator {
	return images.NewLocator(fstest.MapFS{
		"2014/05/oslo.jpg": &fstest.MapFile{Data: []byte("jpeg bytes")},
	})
}

func TestMessagesRequireInput(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"extract", ExtractPostsCommand{}.Validate()},
		{"upload", UploadAssetsCommand{ExportPath: "posts.json"}.Validate()},
		{"import", ImportPostsCommand{MapPath: "map.json"}.Validate()},
		{"author", AssignAuthorCommand{AuthorID: "  "}.Validate()},
		{"report", ReportGapsCommand{ExportPath: "posts.json"}.Validate()},
	}
	for _, tc := range cases {
		if tc.err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if err := (RepairExcerptsCommand{}).Validate(); err != nil {
		t.Fatalf("repair: unexpected error %v", err)
	}
	if err := (ReportGapsCommand{ExportPath: "a", OutputPath: "b"}).Validate(); err != nil {
		t.Fatalf("report without map: unexpected error %v", err)
	}
}

func TestExtractPostsHandlerWritesExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "export", "posts.json")
	logger := &captureLogger{}
	var got ExtractResult

	handler := NewExtractPostsHandler(staticSource(samplePosts()), logger, func(r ExtractResult) { got = r })
	if err := handler.Execute(context.Background(), ExtractPostsCommand{Output: out}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Posts != 2 || got.Output != out {
		t.Fatalf("unexpected result %+v", got)
	}
	items, err := posts.JSONFile{Path: out}.Posts(context.Background())
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(items) != 2 || items[0].ID != 7 {
		t.Fatalf("unexpected export %+v", items)
	}
	if logger.fields["post_count"] != 2 {
		t.Fatalf("expected post_count field, got %#v", logger.fields)
	}
}

func TestExtractPostsHandlerRequiresSource(t *testing.T) {
	handler := NewExtractPostsHandler(nil, nil, nil)
	err := handler.Execute(context.Background(), ExtractPostsCommand{Output: "posts.json"})
	if !errors.Is(err, ErrSourceRequired) {
		t.Fatalf("expected ErrSourceRequired, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerRejectsInvalidMessage(t *testing.T) {
	store := memory.New()
	importer := migrate.NewImporter(store, migrate.NewSynthesizer(migrate.SynthesizerConfig{}))
	handler := NewImportPostsHandler(importer, nil, nil)

	err := handler.Execute(context.Background(), ImportPostsCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no documents, got %d", store.Len())
	}
}

func TestPipelineHandlers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	exportPath := writeExport(t, dir)
	mapPath := filepath.Join(dir, "asset-map.json")
	store := memory.New()

	var uploaded assets.UploadResult
	upload := NewUploadAssetsHandler(assets.NewUploader(store, mediaTree()), nil, func(r assets.UploadResult) { uploaded = r })
	if err := upload.Execute(ctx, UploadAssetsCommand{ExportPath: exportPath, MapPath: mapPath}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if uploaded.Succeeded != 1 || uploaded.Failed() != 1 {
		t.Fatalf("unexpected upload result %+v", uploaded)
	}
	saved, err := assets.LoadMap(mapPath)
	if err != nil {
		t.Fatalf("load map: %v", err)
	}
	if _, ok := saved.Lookup(presentURL); !ok || len(saved) != 1 {
		t.Fatalf("unexpected saved map %v", saved)
	}

	importLogger := &captureLogger{}
	var imported migrate.ImportResult
	importer := migrate.NewImporter(store, migrate.NewSynthesizer(migrate.SynthesizerConfig{}))
	importHandler := NewImportPostsHandler(importer, importLogger, func(r migrate.ImportResult) { imported = r })
	if err := importHandler.Execute(ctx, ImportPostsCommand{ExportPath: exportPath, MapPath: mapPath}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Succeeded != 2 || imported.UnresolvedImages != 1 {
		t.Fatalf("unexpected import result %+v", imported)
	}
	if !importLogger.logged("migration.command.import_posts.completed") {
		t.Fatalf("expected completion log, got %v", importLogger.infoMessages)
	}
	if importLogger.fields["imported_count"] != 2 {
		t.Fatalf("expected imported_count field, got %#v", importLogger.fields)
	}
	doc, err := store.Get(ctx, "imported-7")
	if err != nil {
		t.Fatalf("get imported doc: %v", err)
	}
	foundImage := false
	for _, block := range doc.Content {
		if block.Kind == interfaces.BlockImage {
			foundImage = true
		}
	}
	if !foundImage {
		t.Fatal("expected an image block for the uploaded asset")
	}

	var repaired migrate.RepairResult
	repairer := migrate.NewExcerptRepairer(store, importedPosts, excerpt.Options{}, nil)
	repair := NewRepairExcerptsHandler(repairer, nil, func(r migrate.RepairResult) { repaired = r })
	if err := repair.Execute(ctx, RepairExcerptsCommand{}); err != nil {
		t.Fatalf("repair: %v", err)
	}
	if repaired.Succeeded != 0 || repaired.Skipped != 2 {
		t.Fatalf("expected clean excerpts to be skipped, got %+v", repaired)
	}

	reportPath := filepath.Join(dir, "MISSING_IMAGES.md")
	var gaps report.GapReport
	reportHandler := NewReportGapsHandler(mediaTree(), nil, func(r report.GapReport) { gaps = r }, nil)
	if err := reportHandler.Execute(ctx, ReportGapsCommand{ExportPath: exportPath, MapPath: mapPath, OutputPath: reportPath}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if gaps.TotalReferences != 2 || gaps.Missing() != 1 {
		t.Fatalf("unexpected report %+v", gaps)
	}
	rendered, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(rendered), absentURL) {
		t.Fatalf("expected missing url in report:\n%s", rendered)
	}
}

func TestUploadDryRunLeavesMapUntouched(t *testing.T) {
	dir := t.TempDir()
	exportPath := writeExport(t, dir)
	mapPath := filepath.Join(dir, "asset-map.json")
	store := memory.New()

	var result assets.UploadResult
	handler := NewUploadAssetsHandler(assets.NewUploader(store, mediaTree()), nil, func(r assets.UploadResult) { result = r })
	if err := handler.Execute(context.Background(), UploadAssetsCommand{ExportPath: exportPath, MapPath: mapPath, DryRun: true}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Planned != 1 {
		t.Fatalf("expected one planned upload, got %+v", result)
	}
	if _, err := os.Stat(mapPath); !os.IsNotExist(err) {
		t.Fatalf("expected no map file, got %v", err)
	}
}

func TestAssignAuthorHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	assigner := migrate.NewAuthorAssigner(store, importedPosts, nil)
	handler := NewAssignAuthorHandler(assigner, nil, nil)

	err := handler.Execute(ctx, AssignAuthorCommand{AuthorID: "author-1"})
	if !errors.Is(err, migrate.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}

	if err := store.Upsert(ctx, &interfaces.Document{ID: "author-1", Type: "author", Title: "Kari"}); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := store.Upsert(ctx, &interfaces.Document{ID: "imported-7", Type: "post", Title: "Harbour walk"}); err != nil {
		t.Fatalf("seed post: %v", err)
	}

	var got migrate.AuthorResult
	handler = NewAssignAuthorHandler(assigner, nil, func(r migrate.AuthorResult) { got = r })
	if err := handler.Execute(ctx, AssignAuthorCommand{AuthorID: "author-1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.AuthorTitle != "Kari" || got.Succeeded != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
}

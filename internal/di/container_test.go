package di

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-wpmigrate/internal/logging/gologger"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	migrationcmd "github.com/goliatone/go-wpmigrate/internal/commands/migration"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/runtimeconfig"
	"github.com/goliatone/go-wpmigrate/internal/store/bunstore"
	"github.com/goliatone/go-wpmigrate/internal/store/memory"
	"github.com/goliatone/go-wpmigrate/internal/store/remote"
	"github.com/goliatone/go-wpmigrate/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type staticSource []posts.RawPost

func (s staticSource) Posts(context.Context) ([]posts.RawPost, error) { return s, nil }

func memoryConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Driver = runtimeconfig.StoreMemory
	return cfg
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStoreProjectRequired) {
		t.Fatalf("expected ErrStoreProjectRequired, got %v", err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := memoryConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if provider.GetLogger("wpmigrate.test") == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestContainerSelectsStoreByDriver(t *testing.T) {
	container, err := NewContainer(memoryConfig())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := container.Store().(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", container.Store())
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Remote.ProjectID = "abc123"
	cfg.Store.Remote.Dataset = "production"
	cfg.Store.Remote.Token = "secret"
	container, err = NewContainer(cfg)
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	if _, ok := container.Store().(*remote.Client); !ok {
		t.Fatalf("expected remote client, got %T", container.Store())
	}
}

func TestContainerBunStoreMigratesSchema(t *testing.T) {
	sqldb, err := testsupport.NewNamedSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Driver = runtimeconfig.StoreBun
	cfg.Store.Bun.Cache = true

	container, err := NewContainer(cfg, WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	if _, ok := container.Store().(*bunstore.Store); !ok {
		t.Fatalf("expected bun store, got %T", container.Store())
	}
	if container.cacheService == nil || container.keySerializer == nil {
		t.Fatal("expected cache defaults to be configured")
	}
	if _, err := db.NewSelect().Model((*bunstore.DocumentRecord)(nil)).Count(context.Background()); err != nil {
		t.Fatalf("expected documents table: %v", err)
	}
}

func TestContainerSourceRequiresDatabaseFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.Source.Database = filepath.Join(t.TempDir(), "absent.sqlite")
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, err := container.ExtractHandler(nil); !errors.Is(err, ErrSourceDatabaseMissing) {
		t.Fatalf("expected ErrSourceDatabaseMissing, got %v", err)
	}
}

func TestContainerHandlersRunAgainstInjectedDependencies(t *testing.T) {
	dir := t.TempDir()
	cfg := memoryConfig()
	cfg.Source.ExportPath = filepath.Join(dir, "posts.json")
	cfg.Assets.MapPath = filepath.Join(dir, "asset-map.json")

	source := staticSource{{ID: 5, Title: "Hello", Content: "Hello <strong>world</strong>", Date: "2014-01-02 03:04:05"}}
	container, err := NewContainer(cfg, WithSource(source), WithUploadsFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	ctx := context.Background()

	extract, err := container.ExtractHandler(nil)
	if err != nil {
		t.Fatalf("ExtractHandler: %v", err)
	}
	if err := extract.Execute(ctx, migrationcmd.ExtractPostsCommand{Output: cfg.Source.ExportPath}); err != nil {
		t.Fatalf("extract: %v", err)
	}

	var imported migrate.ImportResult
	handler := container.ImportHandler(func(r migrate.ImportResult) { imported = r })
	msg := migrationcmd.ImportPostsCommand{ExportPath: cfg.Source.ExportPath, MapPath: cfg.Assets.MapPath}
	if err := handler.Execute(ctx, msg); err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Succeeded != 1 {
		t.Fatalf("unexpected import result %+v", imported)
	}
	doc, err := container.Store().Get(ctx, "imported-5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.PublishedAt != "2014-01-02T03:04:05Z" {
		t.Fatalf("unexpected publishedAt %q", doc.PublishedAt)
	}
}

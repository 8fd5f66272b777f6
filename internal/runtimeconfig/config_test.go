package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/runtimeconfig"
)

func remoteConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Remote.ProjectID = "abc123"
	cfg.Store.Remote.Dataset = "production"
	cfg.Store.Remote.Token = "secret"
	return cfg
}

func TestConfigValidate_AcceptsCompleteRemoteConfig(t *testing.T) {
	if err := remoteConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RemoteRequiresCredentials(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStoreProjectRequired) {
		t.Fatalf("expected ErrStoreProjectRequired, got %v", err)
	}

	cfg = remoteConfig()
	cfg.Store.Remote.Token = " "
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStoreTokenRequired) {
		t.Fatalf("expected ErrStoreTokenRequired, got %v", err)
	}
}

func TestConfigValidate_MemoryDriverNeedsNoCredentials(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Driver = " Memory "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStoreDriverUnknown) {
		t.Fatalf("expected ErrStoreDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_BunRequiresDSN(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Store.Driver = runtimeconfig.StoreBun
	cfg.Store.Bun.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStoreDSNRequired) {
		t.Fatalf("expected ErrStoreDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidTimezone(t *testing.T) {
	cfg := remoteConfig()
	cfg.Source.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrTimezoneInvalid) {
		t.Fatalf("expected ErrTimezoneInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLogging(t *testing.T) {
	cfg := remoteConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg = remoteConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeLimits(t *testing.T) {
	cfg := remoteConfig()
	cfg.Import.SlugMaxLength = -1
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrSlugMaxLengthInvalid) {
		t.Fatalf("expected ErrSlugMaxLengthInvalid, got %v", err)
	}
}

func TestLoadFile_OverlaysDefaultsAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpmigrate.toml")
	content := `
[source]
export_path = "data/posts.json"
timezone = "Europe/Oslo"

[store]
driver = "remote"

[store.remote]
project_id = "file-project"
dataset = "staging"
timeout_seconds = 5

[import]
author_id = "author-1"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(runtimeconfig.EnvStoreToken, "env-token")
	t.Setenv(runtimeconfig.EnvStoreDataset, "production")

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Source.ExportPath != "data/posts.json" || cfg.Source.TablePrefix != "wp_" {
		t.Fatalf("unexpected source config %+v", cfg.Source)
	}
	if cfg.Store.Remote.ProjectID != "file-project" || cfg.Store.Remote.Dataset != "production" || cfg.Store.Remote.Token != "env-token" {
		t.Fatalf("unexpected remote config %+v", cfg.Store.Remote)
	}
	if cfg.Store.Remote.Timeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Store.Remote.Timeout())
	}
	if cfg.Import.AuthorID != "author-1" || cfg.Import.IDPrefix != "imported-" {
		t.Fatalf("unexpected import config %+v", cfg.Import)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Oslo" {
		t.Fatalf("unexpected location %v (%v)", loc, err)
	}
}

func TestLoadFile_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[source\nexport_path ="), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runtimeconfig.LoadFile(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadFile_MissingFileIsError(t *testing.T) {
	if _, err := runtimeconfig.LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected read error")
	}
}

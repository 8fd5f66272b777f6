package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrExportPathRequired = errors.New("wpmigrate config: source export path is required")
var ErrTimezoneInvalid = errors.New("wpmigrate config: source timezone is invalid")
var ErrAssetMapPathRequired = errors.New("wpmigrate config: asset map path is required")
var ErrStoreDriverUnknown = errors.New("wpmigrate config: store driver is invalid")
var ErrStoreProjectRequired = errors.New("wpmigrate config: remote store project id is required")
var ErrStoreDatasetRequired = errors.New("wpmigrate config: remote store dataset is required")
var ErrStoreTokenRequired = errors.New("wpmigrate config: remote store token is required")
var ErrStoreRateLimitInvalid = errors.New("wpmigrate config: remote store rate limit must be zero or positive")
var ErrStoreDSNRequired = errors.New("wpmigrate config: bun store dsn is required")
var ErrIDPrefixRequired = errors.New("wpmigrate config: import id prefix is required")
var ErrSlugMaxLengthInvalid = errors.New("wpmigrate config: slug max length must be zero or positive")
var ErrExcerptBudgetInvalid = errors.New("wpmigrate config: excerpt budget must be zero or positive")
var ErrReportOutputRequired = errors.New("wpmigrate config: report output path is required")
var ErrLoggingLevelInvalid = errors.New("wpmigrate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("wpmigrate config: logging format is invalid")

// Store drivers.
const (
	StoreRemote = "remote"
	StoreBun    = "bun"
	StoreMemory = "memory"
)

// Environment variables that override store secrets.
const (
	EnvStoreToken   = "WPMIGRATE_STORE_TOKEN"
	EnvStoreProject = "WPMIGRATE_STORE_PROJECT"
	EnvStoreDataset = "WPMIGRATE_STORE_DATASET"
	EnvStoreDSN     = "WPMIGRATE_STORE_DSN"
)

// Config aggregates every setting of a migration run.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Assets  AssetsConfig  `toml:"assets"`
	Store   StoreConfig   `toml:"store"`
	Import  ImportConfig  `toml:"import"`
	Report  ReportConfig  `toml:"report"`
	Logging LoggingConfig `toml:"logging"`
}

// SourceConfig locates the legacy data. Database is the WordPress SQLite file
// read by the extract stage; ExportPath is the structured export every later
// stage reads.
type SourceConfig struct {
	ExportPath  string `toml:"export_path"`
	Database    string `toml:"database"`
	TablePrefix string `toml:"table_prefix"`
	// Timezone interprets legacy local timestamps.
	Timezone string `toml:"timezone"`
}

// AssetsConfig locates the asset map and the local uploads tree.
type AssetsConfig struct {
	MapPath     string   `toml:"map_path"`
	UploadsRoot string   `toml:"uploads_root"`
	Markers     []string `toml:"markers"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver string       `toml:"driver"`
	Remote RemoteConfig `toml:"remote"`
	Bun    BunConfig    `toml:"bun"`
}

// RemoteConfig configures the hosted content-lake client.
type RemoteConfig struct {
	ProjectID      string  `toml:"project_id"`
	Dataset        string  `toml:"dataset"`
	Token          string  `toml:"token"`
	APIVersion     string  `toml:"api_version"`
	BaseURL        string  `toml:"base_url"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// BunConfig configures the SQL-backed store.
type BunConfig struct {
	DSN             string `toml:"dsn"`
	Cache           bool   `toml:"cache"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// CacheTTL returns the read cache TTL as a duration.
func (b BunConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSeconds) * time.Second
}

// ImportConfig shapes the synthesized documents.
type ImportConfig struct {
	IDPrefix      string `toml:"id_prefix"`
	DocumentType  string `toml:"document_type"`
	SlugMaxLength int    `toml:"slug_max_length"`
	ExcerptBudget int    `toml:"excerpt_budget"`
	AuthorID      string `toml:"author_id"`
	DryRun        bool   `toml:"dry_run"`
}

// ReportConfig locates the gap report.
type ReportConfig struct {
	OutputPath string `toml:"output_path"`
}

// LoggingConfig configures the go-logger provider.
type LoggingConfig struct {
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			ExportPath:  "export/posts.json",
			Database:    "export/wordpress.sqlite",
			TablePrefix: "wp_",
			Timezone:    "UTC",
		},
		Assets: AssetsConfig{
			MapPath:     "export/asset-map.json",
			UploadsRoot: "uploads",
		},
		Store: StoreConfig{
			Driver: StoreRemote,
			Remote: RemoteConfig{
				APIVersion:     "2021-06-07",
				RateLimit:      10,
				TimeoutSeconds: 30,
			},
			Bun: BunConfig{
				DSN:             "file:wpmigrate.db?cache=shared&_fk=1",
				CacheTTLSeconds: 60,
			},
		},
		Import: ImportConfig{
			IDPrefix:      "imported-",
			DocumentType:  "post",
			SlugMaxLength: 200,
			ExcerptBudget: 160,
		},
		Report: ReportConfig{
			OutputPath: "MISSING_IMAGES.md",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFile reads a TOML file over the defaults and applies environment
// overrides. An empty path loads only defaults and environment.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("wpmigrate config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("wpmigrate config: decode %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides store secrets from the environment.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvStoreToken); ok && v != "" {
		cfg.Store.Remote.Token = v
	}
	if v, ok := lookup(EnvStoreProject); ok && v != "" {
		cfg.Store.Remote.ProjectID = v
	}
	if v, ok := lookup(EnvStoreDataset); ok && v != "" {
		cfg.Store.Remote.Dataset = v
	}
	if v, ok := lookup(EnvStoreDSN); ok && v != "" {
		cfg.Store.Bun.DSN = v
	}
}

// Location resolves the source timezone.
func (cfg Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(cfg.Source.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTimezoneInvalid, name)
	}
	return loc, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Source.ExportPath) == "" {
		return ErrExportPathRequired
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Assets.MapPath) == "" {
		return ErrAssetMapPathRequired
	}
	switch driver := NormalizeDriver(cfg.Store.Driver); driver {
	case StoreRemote:
		remote := cfg.Store.Remote
		if strings.TrimSpace(remote.ProjectID) == "" {
			return ErrStoreProjectRequired
		}
		if strings.TrimSpace(remote.Dataset) == "" {
			return ErrStoreDatasetRequired
		}
		if strings.TrimSpace(remote.Token) == "" {
			return ErrStoreTokenRequired
		}
		if remote.RateLimit < 0 {
			return ErrStoreRateLimitInvalid
		}
	case StoreBun:
		if strings.TrimSpace(cfg.Store.Bun.DSN) == "" {
			return ErrStoreDSNRequired
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: %s", ErrStoreDriverUnknown, driver)
	}
	if strings.TrimSpace(cfg.Import.IDPrefix) == "" {
		return ErrIDPrefixRequired
	}
	if cfg.Import.SlugMaxLength < 0 {
		return ErrSlugMaxLengthInvalid
	}
	if cfg.Import.ExcerptBudget < 0 {
		return ErrExcerptBudgetInvalid
	}
	if strings.TrimSpace(cfg.Report.OutputPath) == "" {
		return ErrReportOutputRequired
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// NormalizeDriver lowercases and trims a store driver name.
func NormalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

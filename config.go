package wpmigrate

import "github.com/goliatone/go-wpmigrate/internal/runtimeconfig"

var (
	ErrExportPathRequired    = runtimeconfig.ErrExportPathRequired
	ErrTimezoneInvalid       = runtimeconfig.ErrTimezoneInvalid
	ErrAssetMapPathRequired  = runtimeconfig.ErrAssetMapPathRequired
	ErrStoreDriverUnknown    = runtimeconfig.ErrStoreDriverUnknown
	ErrStoreProjectRequired  = runtimeconfig.ErrStoreProjectRequired
	ErrStoreDatasetRequired  = runtimeconfig.ErrStoreDatasetRequired
	ErrStoreTokenRequired    = runtimeconfig.ErrStoreTokenRequired
	ErrStoreRateLimitInvalid = runtimeconfig.ErrStoreRateLimitInvalid
	ErrStoreDSNRequired      = runtimeconfig.ErrStoreDSNRequired
	ErrIDPrefixRequired      = runtimeconfig.ErrIDPrefixRequired
	ErrSlugMaxLengthInvalid  = runtimeconfig.ErrSlugMaxLengthInvalid
	ErrExcerptBudgetInvalid  = runtimeconfig.ErrExcerptBudgetInvalid
	ErrReportOutputRequired  = runtimeconfig.ErrReportOutputRequired
	ErrLoggingLevelInvalid   = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid  = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	SourceConfig  = runtimeconfig.SourceConfig
	AssetsConfig  = runtimeconfig.AssetsConfig
	StoreConfig   = runtimeconfig.StoreConfig
	RemoteConfig  = runtimeconfig.RemoteConfig
	BunConfig     = runtimeconfig.BunConfig
	ImportConfig  = runtimeconfig.ImportConfig
	ReportConfig  = runtimeconfig.ReportConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML config file over the defaults and applies
// environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}

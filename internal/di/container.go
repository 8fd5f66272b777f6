package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/commands"
	migrationcmd "github.com/goliatone/go-wpmigrate/internal/commands/migration"
	"github.com/goliatone/go-wpmigrate/internal/excerpt"
	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/internal/logging/gologger"
	"github.com/goliatone/go-wpmigrate/internal/markdown"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/report"
	"github.com/goliatone/go-wpmigrate/internal/runtimeconfig"
	"github.com/goliatone/go-wpmigrate/internal/store/bunstore"
	"github.com/goliatone/go-wpmigrate/internal/store/memory"
	"github.com/goliatone/go-wpmigrate/internal/store/remote"
	"github.com/goliatone/go-wpmigrate/internal/validation"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// ErrSourceDatabaseMissing is returned when extraction points at a database
// file that does not exist.
var ErrSourceDatabaseMissing = errors.New("wpmigrate: source database not found")

// Container wires the pipeline services for one configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	store     interfaces.Store
	source    posts.Source
	uploads   fs.FS
	validator migrate.DocumentValidator
	location  *time.Location

	closers []func() error

	synth     *migrate.Synthesizer
	converter *migrate.Converter
	importer  *migrate.Importer
	uploader  *assets.Uploader
	repairer  *migrate.ExcerptRepairer
	assigner  *migrate.AuthorAssigner
	locator   *images.Locator
	renderer  *markdown.Renderer
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger backed provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithStore overrides the store selected by the configured driver.
func WithStore(store interfaces.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithBunDB supplies the database used by the bun store driver.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the read cache used by the bun store driver.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithHTTPClient overrides the client used by the remote store driver.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithSource overrides the WordPress database as the extraction source.
func WithSource(source posts.Source) Option {
	return func(c *Container) {
		c.source = source
	}
}

// WithUploadsFS overrides the local uploads tree.
func WithUploadsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.uploads = fsys
	}
}

// WithValidator overrides the document schema validator.
func WithValidator(validator migrate.DocumentValidator) Option {
	return func(c *Container) {
		c.validator = validator
	}
}

// NewContainer validates cfg and builds every pipeline service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, location: loc}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStore(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStore() error {
	if c.store != nil {
		return nil
	}
	storeLogger := logging.StoreLogger(c.loggerProvider)

	switch runtimeconfig.NormalizeDriver(c.Config.Store.Driver) {
	case runtimeconfig.StoreMemory:
		c.store = memory.New()
	case runtimeconfig.StoreBun:
		if c.bunDB == nil {
			db, err := bunstore.Open("", c.Config.Store.Bun.DSN)
			if err != nil {
				return err
			}
			c.bunDB = db
			c.closers = append(c.closers, db.Close)
		}
		if err := bunstore.Migrate(context.Background(), c.bunDB); err != nil {
			return err
		}
		opts := []bunstore.Option{bunstore.WithLogger(storeLogger)}
		c.configureCacheDefaults()
		if c.cacheService != nil {
			opts = append(opts, bunstore.WithCache(c.cacheService, c.keySerializer))
		}
		c.store = bunstore.New(c.bunDB, opts...)
	default:
		rc := c.Config.Store.Remote
		clientOpts := []remote.Option{remote.WithLogger(storeLogger)}
		if c.httpClient != nil {
			clientOpts = append(clientOpts, remote.WithHTTPClient(c.httpClient))
		}
		client, err := remote.New(remote.Config{
			ProjectID:  rc.ProjectID,
			Dataset:    rc.Dataset,
			Token:      rc.Token,
			APIVersion: rc.APIVersion,
			BaseURL:    rc.BaseURL,
			RateLimit:  rc.RateLimit,
			Timeout:    rc.Timeout(),
		}, clientOpts...)
		if err != nil {
			return err
		}
		c.store = client
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Store.Bun.Cache {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Store.Bun.CacheTTL(); ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureServices() error {
	if c.validator == nil {
		validator, err := validation.NewPostValidator()
		if err != nil {
			return err
		}
		c.validator = validator
	}
	if c.uploads == nil && strings.TrimSpace(c.Config.Assets.UploadsRoot) != "" {
		c.uploads = os.DirFS(c.Config.Assets.UploadsRoot)
	}

	ic := c.Config.Import
	excerptOpts := excerpt.Options{Budget: ic.ExcerptBudget}
	query := c.DocumentQuery()

	c.synth = migrate.NewSynthesizer(migrate.SynthesizerConfig{
		IDPrefix:      ic.IDPrefix,
		DocumentType:  ic.DocumentType,
		SlugMaxLength: ic.SlugMaxLength,
		Location:      c.location,
		Excerpt:       excerptOpts,
		AuthorID:      ic.AuthorID,
	})
	c.converter = migrate.NewConverter()
	c.importer = migrate.NewImporter(c.store, c.synth,
		migrate.WithImportLogger(logging.ImportLogger(c.loggerProvider)),
		migrate.WithValidator(c.validator),
		migrate.WithConverter(c.converter),
	)
	c.locator = images.NewLocator(c.uploads, c.Config.Assets.Markers...)
	c.uploader = assets.NewUploader(c.store, c.locator, assets.WithLogger(logging.AssetsLogger(c.loggerProvider)))
	c.repairer = migrate.NewExcerptRepairer(c.store, query, excerptOpts, logging.ExcerptLogger(c.loggerProvider))
	c.assigner = migrate.NewAuthorAssigner(c.store, query, logging.AuthorLogger(c.loggerProvider))
	c.renderer = markdown.NewRenderer(markdown.Options{})
	return nil
}

// DocumentQuery selects the documents this migration imported.
func (c *Container) DocumentQuery() interfaces.DocumentQuery {
	docType := c.Config.Import.DocumentType
	if docType == "" {
		docType = migrate.DefaultDocumentType
	}
	return interfaces.DocumentQuery{Type: docType, IDPrefix: c.Config.Import.IDPrefix}
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Store returns the configured document and asset store.
func (c *Container) Store() interfaces.Store { return c.store }

// Converter returns the content conversion pipeline.
func (c *Container) Converter() *migrate.Converter { return c.converter }

// Importer returns the document importer.
func (c *Container) Importer() *migrate.Importer { return c.importer }

// Renderer returns the preview renderer.
func (c *Container) Renderer() *markdown.Renderer { return c.renderer }

// Locator returns the uploads tree locator.
func (c *Container) Locator() *images.Locator { return c.locator }

// Source returns the extraction source, opening the WordPress database on
// first use.
func (c *Container) Source() (posts.Source, error) {
	if c.source != nil {
		return c.source, nil
	}
	path := strings.TrimSpace(c.Config.Source.Database)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceDatabaseMissing, path)
	}
	db, err := bunstore.Open(bunstore.DriverSQLite, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, db.Close)
	c.source = posts.NewDatabase(db, c.Config.Source.TablePrefix)
	return c.source, nil
}

// ExtractHandler builds the extract stage handler.
func (c *Container) ExtractHandler(onResult migrationcmd.ResultFunc[migrationcmd.ExtractResult]) (*migrationcmd.ExtractPostsHandler, error) {
	source, err := c.Source()
	if err != nil {
		return nil, err
	}
	return migrationcmd.NewExtractPostsHandler(source, c.commandLogger(), onResult), nil
}

// UploadHandler builds the asset upload stage handler.
func (c *Container) UploadHandler(onResult migrationcmd.ResultFunc[assets.UploadResult]) *migrationcmd.UploadAssetsHandler {
	return migrationcmd.NewUploadAssetsHandler(c.uploader, c.commandLogger(), onResult)
}

// ImportHandler builds the import stage handler.
func (c *Container) ImportHandler(onResult migrationcmd.ResultFunc[migrate.ImportResult]) *migrationcmd.ImportPostsHandler {
	return migrationcmd.NewImportPostsHandler(c.importer, c.commandLogger(), onResult)
}

// RepairHandler builds the excerpt repair handler.
func (c *Container) RepairHandler(onResult migrationcmd.ResultFunc[migrate.RepairResult]) *migrationcmd.RepairExcerptsHandler {
	return migrationcmd.NewRepairExcerptsHandler(c.repairer, c.commandLogger(), onResult)
}

// AuthorHandler builds the author assignment handler.
func (c *Container) AuthorHandler(onResult migrationcmd.ResultFunc[migrate.AuthorResult]) *migrationcmd.AssignAuthorHandler {
	return migrationcmd.NewAssignAuthorHandler(c.assigner, c.commandLogger(), onResult)
}

// ReportHandler builds the gap report handler.
func (c *Container) ReportHandler(onResult migrationcmd.ResultFunc[report.GapReport]) *migrationcmd.ReportGapsHandler {
	analyzerOpts := []report.Option{report.WithLogger(logging.ReportLogger(c.loggerProvider))}
	return migrationcmd.NewReportGapsHandler(c.locator, c.commandLogger(), onResult, analyzerOpts)
}

func (c *Container) commandLogger() interfaces.Logger {
	return commands.CommandLogger(c.loggerProvider, "migration")
}

// Close releases databases opened by the container.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

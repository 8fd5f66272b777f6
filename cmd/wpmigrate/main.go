package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-wpmigrate"
)

// moduleBuilder constructs the runtime for a subcommand. Tests replace it to
// inject in-memory dependencies.
var moduleBuilder = func(cfg wpmigrate.Config) (*wpmigrate.Module, error) {
	return wpmigrate.New(cfg)
}

type globalFlags struct {
	configPath string
	store      string
	export     string
	assetMap   string
	uploads    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wpmigrate: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "wpmigrate",
		Short: "Migrate a WordPress blog into a structured document store",
		Long: `wpmigrate extracts published posts from a WordPress database, uploads
their images, converts the HTML bodies into portable rich text and imports
them into the configured document store. Every stage is safe to re-run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a TOML config file")
	pf.StringVar(&flags.store, "store", "", "document store driver: remote, bun or memory")
	pf.StringVar(&flags.export, "export", "", "path to the structured post export")
	pf.StringVar(&flags.assetMap, "asset-map", "", "path to the asset map file")
	pf.StringVar(&flags.uploads, "uploads", "", "root of the local uploads tree")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newExtractCmd(flags),
		newUploadCmd(flags),
		newImportCmd(flags),
		newRepairCmd(flags),
		newAuthorCmd(flags),
		newReportCmd(flags),
		newPreviewCmd(flags),
		newRunCmd(flags),
	)
	return root
}

func (f *globalFlags) config() (wpmigrate.Config, error) {
	cfg, err := wpmigrate.LoadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.store != "" {
		cfg.Store.Driver = f.store
	}
	if f.export != "" {
		cfg.Source.ExportPath = f.export
	}
	if f.assetMap != "" {
		cfg.Assets.MapPath = f.assetMap
	}
	if f.uploads != "" {
		cfg.Assets.UploadsRoot = f.uploads
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg, nil
}

// withModule builds the module from flags, hands it to fn and closes it.
func (f *globalFlags) withModule(adjust func(*wpmigrate.Config), fn func(*wpmigrate.Module) error) error {
	cfg, err := f.config()
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(&cfg)
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()
	return fn(module)
}

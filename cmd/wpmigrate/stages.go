package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-wpmigrate"
)

func newExtractCmd(flags *globalFlags) *cobra.Command {
	var database, prefix string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the structured export from the WordPress database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adjust := func(cfg *wpmigrate.Config) {
				if database != "" {
					cfg.Source.Database = database
				}
				if prefix != "" {
					cfg.Source.TablePrefix = prefix
				}
			}
			return flags.withModule(adjust, func(m *wpmigrate.Module) error {
				result, err := m.Extract(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Extracted %d posts to %s\n", result.Posts, result.Output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&database, "database", "", "path to the WordPress SQLite database")
	cmd.Flags().StringVar(&prefix, "table-prefix", "", "WordPress table prefix")
	return cmd
}

func newUploadCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "upload-assets",
		Short: "Upload referenced images missing from the asset map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				result, err := m.UploadAssets(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				printUpload(cmd, result, dryRun)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report uploads without performing them")
	return cmd
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert exported posts and upsert them into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				result, err := m.Import(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				printImport(cmd, result, dryRun)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build and validate documents without writing")
	return cmd
}

func newRepairCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "repair-excerpts",
		Short: "Rewrite stored excerpts that carry escape artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				result, err := m.RepairExcerpts(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				printRepair(cmd, result, dryRun)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list repairs without patching")
	return cmd
}

func newAuthorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-author [author-id]",
		Short: "Reference an author document from every imported post",
		Long: `Verifies the author document exists and patches an author reference
onto every imported post. Without an argument the configured author id is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authorID := ""
			if len(args) == 1 {
				authorID = args[0]
			}
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				result, err := m.AssignAuthor(cmd.Context(), authorID)
				if err != nil {
					return err
				}
				cmd.Printf("Author: %s\n", result.AuthorTitle)
				cmd.Printf("Updated: %d  Already set: %d  Failed: %d\n", result.Succeeded, result.Skipped, result.Failed())
				printFailures(cmd, result.Failures)
				return nil
			})
		},
	}
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the missing image report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adjust := func(cfg *wpmigrate.Config) {
				if output != "" {
					cfg.Report.OutputPath = output
				}
			}
			return flags.withModule(adjust, func(m *wpmigrate.Module) error {
				gaps, err := m.Report(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("References: %d  Resolved: %d  Missing: %d  Affected posts: %d\n",
					gaps.TotalReferences, gaps.Resolved, gaps.Missing(), len(gaps.Posts))
				cmd.Printf("Report written to %s\n", m.Container().Config.Report.OutputPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "report file path")
	return cmd
}

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <post-id>",
		Short: "Show one post at every conversion stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				preview, err := m.Preview(cmd.Context(), postID)
				if err != nil {
					return err
				}
				data, err := preview.JSON()
				if err != nil {
					return err
				}
				cmd.Println("== Markup")
				cmd.Println(preview.Markup)
				cmd.Println("== Document")
				cmd.Println(string(data))
				cmd.Println("== HTML")
				cmd.Println(preview.HTML)
				for _, url := range preview.Unresolved {
					cmd.Printf("unresolved image: %s\n", url)
				}
				return nil
			})
		},
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Upload assets, import posts and repair excerpts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withModule(nil, func(m *wpmigrate.Module) error {
				run, err := m.Run(cmd.Context(), dryRun)
				if run.Upload != nil {
					printUpload(cmd, *run.Upload, dryRun)
				}
				if run.Import != nil {
					printImport(cmd, *run.Import, dryRun)
				}
				if run.Repair != nil {
					printRepair(cmd, *run.Repair, dryRun)
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run every stage without writing")
	return cmd
}

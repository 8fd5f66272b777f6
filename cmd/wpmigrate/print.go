package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-wpmigrate"
	"github.com/goliatone/go-wpmigrate/internal/batch"
)

func printUpload(cmd *cobra.Command, r wpmigrate.UploadResult, dryRun bool) {
	cmd.Println("Assets")
	if dryRun {
		cmd.Printf("  Would upload: %d  Already mapped: %d  Failed: %d\n", r.Planned, r.Skipped, r.Failed())
	} else {
		cmd.Printf("  Uploaded: %d  Already mapped: %d  Failed: %d\n", r.Succeeded, r.Skipped, r.Failed())
	}
	printFailures(cmd, r.Failures)
}

func printImport(cmd *cobra.Command, r wpmigrate.ImportResult, dryRun bool) {
	cmd.Println("Posts")
	if dryRun {
		cmd.Printf("  Would import: %d  Failed: %d\n", r.Planned, r.Failed())
	} else {
		cmd.Printf("  Imported: %d  Failed: %d\n", r.Succeeded, r.Failed())
	}
	if r.UnresolvedImages > 0 {
		cmd.Printf("  Images without asset: %d\n", r.UnresolvedImages)
	}
	printFailures(cmd, r.Failures)
}

func printRepair(cmd *cobra.Command, r wpmigrate.RepairResult, dryRun bool) {
	cmd.Println("Excerpts")
	verb := "Repaired"
	if dryRun {
		verb = "Would repair"
	}
	cmd.Printf("  %s: %d  Clean: %d  Failed: %d\n", verb, r.Succeeded, r.Skipped, r.Failed())
	for _, change := range r.Changes {
		cmd.Printf("  %s: %q -> %q\n", change.DocumentID, change.Before, change.After)
	}
	printFailures(cmd, r.Failures)
}

func printFailures(cmd *cobra.Command, failures []batch.Failure) {
	for _, f := range failures {
		cmd.Printf("  failed %s\n", f)
	}
}

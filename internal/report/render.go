package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-wpmigrate/internal/images"
	"gopkg.in/yaml.v3"
)

// Summary is the front matter block of a rendered report. It is what a later
// run reads back to print the delta.
type Summary struct {
	GeneratedAt     string   `yaml:"generated_at"`
	TotalReferences int      `yaml:"total_references"`
	Resolved        int      `yaml:"resolved"`
	Missing         int      `yaml:"missing"`
	AffectedPosts   int      `yaml:"affected_posts"`
	Years           []string `yaml:"years"`
}

// Summarize extracts the front matter summary of r.
func (r GapReport) Summarize() Summary {
	return Summary{
		GeneratedAt:     r.GeneratedAt.Format(time.RFC3339),
		TotalReferences: r.TotalReferences,
		Resolved:        r.Resolved,
		Missing:         r.Missing(),
		AffectedPosts:   len(r.Posts),
		Years:           r.YearLabels(),
	}
}

// Delta compares two runs.
type Delta struct {
	Previous Summary
	Missing  int
	Resolved int
}

// Compare returns the change from previous to current.
func Compare(previous, current Summary) Delta {
	return Delta{
		Previous: previous,
		Missing:  current.Missing - previous.Missing,
		Resolved: current.Resolved - previous.Resolved,
	}
}

// ReadSummary parses the front matter of a previously written report. A
// missing file yields (nil, nil).
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("report: read previous report: %w", err)
	}
	var summary Summary
	if _, err := frontmatter.Parse(bytes.NewReader(data), &summary); err != nil {
		return nil, fmt.Errorf("report: parse previous front matter: %w", err)
	}
	return &summary, nil
}

// Render writes r as Markdown with a YAML front matter block. When previous is
// non-nil a section comparing both runs is added.
func Render(w io.Writer, r GapReport, previous *Summary) error {
	summary := r.Summarize()
	head, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("report: encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")

	b.WriteString("# Missing Images Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total image references**: %d\n", r.TotalReferences)
	fmt.Fprintf(&b, "- **Resolved (uploaded or on disk)**: %d\n", r.Resolved)
	fmt.Fprintf(&b, "- **Missing images**: %d\n", r.Missing())
	fmt.Fprintf(&b, "- **Affected posts**: %d\n", len(r.Posts))

	if previous != nil {
		delta := Compare(*previous, summary)
		b.WriteString("\n## Changes Since Previous Report\n\n")
		fmt.Fprintf(&b, "- Previous report: %s\n", previous.GeneratedAt)
		fmt.Fprintf(&b, "- Missing images: %d (%+d)\n", summary.Missing, delta.Missing)
		fmt.Fprintf(&b, "- Resolved images: %d (%+d)\n", summary.Resolved, delta.Resolved)
	}

	b.WriteString("\n## Missing Images by Year\n")
	for _, year := range r.Years {
		fmt.Fprintf(&b, "\n### %s (%d images)\n\n", year.Year, len(year.URLs))
		for _, url := range year.URLs {
			fmt.Fprintf(&b, "- %s\n", url)
		}
	}

	b.WriteString("\n## Affected Posts\n\n")
	for _, post := range r.Posts {
		fmt.Fprintf(&b, "### %s\n", post.Title)
		fmt.Fprintf(&b, "- Date: %s\n", post.Date)
		fmt.Fprintf(&b, "- Post ID: %s\n", post.PostID)
		fmt.Fprintf(&b, "- Missing: %d of %d images\n\n", len(post.Missing), post.Images)
		for _, url := range post.Missing {
			filename := images.Filename(url)
			fmt.Fprintf(&b, "- `%s`", filename)
			if IsFacebookExport(filename) {
				b.WriteString(" *(Facebook image)*")
			}
			fmt.Fprintf(&b, "\n  - URL: %s\n", url)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Complete List of Missing Images\n\n")
	for _, url := range r.MissingURLs {
		filename := images.Filename(url)
		fmt.Fprintf(&b, "- %s", filename)
		if IsFacebookExport(filename) {
			b.WriteString(" *(Facebook)*")
		}
		fmt.Fprintf(&b, "\n  - %s\n", url)
	}

	period := r.EarliestYear()
	if period == "" {
		period = "the relevant time period"
	}
	fmt.Fprintf(&b, `
## Recovery Instructions

### Option 1: Find on Facebook
Facebook images follow the pattern: `+"`<numeric-id>_<numeric-id>_<numeric-id>_<letter>`"+`

You may be able to find these by:
1. Searching your Facebook photos around the dates listed above
2. Using Facebook's "Download Your Information" feature
3. Checking Facebook albums from %s

### Option 2: Try Original URLs
Some images might still be accessible at their original URLs. Download them into the uploads tree and re-run the asset upload.

### Option 3: Remove References
If images cannot be recovered, re-running the import leaves them out: unresolved images produce no image block.
`, period)

	_, err = io.WriteString(w, b.String())
	return err
}

// WriteFile renders r to path, replacing any previous report atomically.
func WriteFile(path string, r GapReport, previous *Summary) error {
	var buf bytes.Buffer
	if err := Render(&buf, r, previous); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: create directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("report: replace: %w", err)
	}
	return nil
}

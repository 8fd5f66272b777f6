// Package report reconciles the image references of legacy posts against
// the asset map and the local media tree and renders the gap report.
package report

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/assets"
	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/internal/migrate"
	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

var facebookExport = regexp.MustCompile(`^\d+_\d+_\d+_[a-z]`)

// LocalFiles reports whether a legacy URL has a copy in the media tree.
type LocalFiles interface {
	Exists(url string) bool
}

// YearGap lists the missing URLs whose path names one year.
type YearGap struct {
	Year string
	URLs []string
}

// PostGap describes one post with at least one missing image.
type PostGap struct {
	PostID  string
	Title   string
	Date    string
	Images  int
	Missing []string
}

// GapReport is the reconciliation result. It is never written to the store.
type GapReport struct {
	GeneratedAt     time.Time
	TotalReferences int
	Resolved        int
	MissingURLs     []string
	Years           []YearGap
	Posts           []PostGap
}

// Missing returns the number of distinct missing URLs.
func (r GapReport) Missing() int {
	return len(r.MissingURLs)
}

// YearLabels returns the year buckets in sorted order.
func (r GapReport) YearLabels() []string {
	out := make([]string, len(r.Years))
	for i, year := range r.Years {
		out[i] = year.Year
	}
	return out
}

// EarliestYear returns the first year bucket, or "" when nothing is missing.
func (r GapReport) EarliestYear() string {
	if len(r.Years) == 0 {
		return ""
	}
	return r.Years[0].Year
}

// IsFacebookExport reports whether filename follows the numeric naming of
// photos exported from Facebook.
func IsFacebookExport(filename string) bool {
	return facebookExport.MatchString(filename)
}

// Analyzer builds gap reports.
type Analyzer struct {
	assets assets.Map
	files  LocalFiles
	now    func() time.Time
	logger interfaces.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithNow overrides the report clock.
func WithNow(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the analyzer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer builds an analyzer. files may be nil when no media tree is
// available, in which case only the asset map resolves URLs.
func NewAnalyzer(m assets.Map, files LocalFiles, opts ...Option) *Analyzer {
	a := &Analyzer{assets: m, files: files, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Resolved reports whether url is mapped or present on disk.
func (a *Analyzer) Resolved(url string) bool {
	if _, ok := a.assets.Lookup(url); ok {
		return true
	}
	return a.files != nil && a.files.Exists(url)
}

// Analyze partitions every image URL referenced by items into resolved and
// missing, grouping the missing ones by year and by post.
func (a *Analyzer) Analyze(items []posts.RawPost) GapReport {
	report := GapReport{GeneratedAt: a.now().UTC()}

	type postImages struct {
		post posts.RawPost
		urls []string
	}
	var referenced []postImages
	status := map[string]bool{}
	var order []string

	for _, post := range items {
		if strings.TrimSpace(post.Content) == "" {
			continue
		}
		urls := migrate.PostImages(post.Content)
		if len(urls) == 0 {
			continue
		}
		referenced = append(referenced, postImages{post: post, urls: urls})
		for _, url := range urls {
			if _, seen := status[url]; seen {
				continue
			}
			status[url] = a.Resolved(url)
			order = append(order, url)
		}
	}

	byYear := map[string][]string{}
	for _, url := range order {
		report.TotalReferences++
		if status[url] {
			report.Resolved++
			continue
		}
		report.MissingURLs = append(report.MissingURLs, url)
		year := images.Year(url)
		byYear[year] = append(byYear[year], url)
	}
	sort.Strings(report.MissingURLs)

	years := make([]string, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		report.Years = append(report.Years, YearGap{Year: year, URLs: byYear[year]})
	}

	sort.SliceStable(referenced, func(i, j int) bool {
		return referenced[i].post.ID < referenced[j].post.ID
	})
	for _, entry := range referenced {
		var missing []string
		for _, url := range entry.urls {
			if !status[url] {
				missing = append(missing, url)
			}
		}
		if len(missing) == 0 {
			continue
		}
		report.Posts = append(report.Posts, PostGap{
			PostID:  strconv.FormatInt(int64(entry.post.ID), 10),
			Title:   strings.TrimSpace(normalize.Text(entry.post.Title)),
			Date:    entry.post.Date,
			Images:  len(entry.urls),
			Missing: missing,
		})
	}

	a.logger.Info("report.analyzed",
		"references", report.TotalReferences,
		"resolved", report.Resolved,
		"missing", report.Missing(),
		"affected_posts", len(report.Posts),
		"years", strings.Join(report.YearLabels(), ","),
	)
	return report
}

package images

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultMarkers are the URL path segments after which the local uploads
// tree mirrors the legacy site.
var DefaultMarkers = []string{"wp-content/uploads/", "/uploads/"}

var ErrOutsideUploads = errors.New("images: url does not point into the uploads tree")

var yearPattern = regexp.MustCompile(`/(\d{4})/`)

const UnknownYear = "unknown"

// RelativePath maps a legacy URL onto a slash-separated path relative to the
// uploads root, using the first marker found in the URL. Query strings and
// fragments are ignored and percent escapes decoded.
func RelativePath(rawURL string, markers []string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		p = parsed.Path
	} else if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}

	for _, marker := range markers {
		idx := strings.Index(p, marker)
		if idx < 0 {
			continue
		}
		rel := p[idx+len(marker):]
		if decoded, err := url.PathUnescape(rel); err == nil {
			rel = decoded
		}
		rel = path.Clean(strings.TrimPrefix(rel, "/"))
		if rel == "." || !fs.ValidPath(rel) {
			return "", fmt.Errorf("%w: %s", ErrOutsideUploads, rawURL)
		}
		return rel, nil
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideUploads, rawURL)
}

// Year returns the first four digit path segment of the URL, or UnknownYear.
func Year(rawURL string) string {
	if m := yearPattern.FindStringSubmatch(rawURL); len(m) == 2 {
		return m[1]
	}
	return UnknownYear
}

// Filename returns the last path segment of the URL without query string.
func Filename(rawURL string) string {
	p := rawURL
	if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}
	return path.Base(p)
}

// Locator resolves legacy URLs against a local uploads tree.
type Locator struct {
	fsys    fs.FS
	markers []string
}

// NewLocator builds a locator over fsys, the root of the uploads tree.
func NewLocator(fsys fs.FS, markers ...string) *Locator {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Locator{fsys: fsys, markers: append([]string(nil), markers...)}
}

// Path returns the path of rawURL relative to the uploads root.
func (l *Locator) Path(rawURL string) (string, error) {
	return RelativePath(rawURL, l.markers)
}

// Exists reports whether the local file for rawURL is present.
func (l *Locator) Exists(rawURL string) bool {
	if l == nil || l.fsys == nil {
		return false
	}
	rel, err := l.Path(rawURL)
	if err != nil {
		return false
	}
	info, err := fs.Stat(l.fsys, rel)
	return err == nil && !info.IsDir()
}

// Read loads the local file for rawURL and returns its bytes and filename.
func (l *Locator) Read(rawURL string) ([]byte, string, error) {
	if l == nil || l.fsys == nil {
		return nil, "", errors.New("images: locator has no uploads root")
	}
	rel, err := l.Path(rawURL)
	if err != nil {
		return nil, "", err
	}
	data, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		return nil, "", fmt.Errorf("images: read %s: %w", rel, err)
	}
	return data, path.Base(rel), nil
}

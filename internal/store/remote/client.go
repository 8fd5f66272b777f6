// Package remote talks to a hosted content-lake HTTP API: documents are
// mutated with createOrReplace and patch.set, queried with a filter
// expression, and images are uploaded as raw bytes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultAPIVersion = "2021-06-07"
	DefaultTimeout    = 30 * time.Second
	DefaultRateLimit  = 10.0
	DefaultBurst      = 1
)

var (
	ErrProjectRequired = errors.New("remote store: project id is required")
	ErrDatasetRequired = errors.New("remote store: dataset is required")
	ErrTokenRequired   = errors.New("remote store: token is required")
)

// Config holds connection settings for the remote store.
type Config struct {
	// ProjectID selects the project host when BaseURL is empty.
	ProjectID string

	// Dataset is the dataset every request targets.
	Dataset string

	// Token is sent as a bearer token.
	Token string

	// APIVersion is the dated API version (default: 2021-06-07).
	APIVersion string

	// BaseURL overrides https://<project>.api.sanity.io.
	BaseURL string

	// RateLimit is the sustained requests per second (default: 10).
	RateLimit float64

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration
}

// Client implements interfaces.DocumentStore and interfaces.AssetStore over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	version string
	dataset string
	token   string
	limiter *rate.Limiter
	logger  interfaces.Logger
}

var (
	_ interfaces.DocumentStore = (*Client)(nil)
	_ interfaces.AssetStore    = (*Client)(nil)
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New validates cfg and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Dataset) == "" {
		return nil, ErrDatasetRequired
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrTokenRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		if strings.TrimSpace(cfg.ProjectID) == "" {
			return nil, ErrProjectRequired
		}
		baseURL = "https://" + strings.TrimSpace(cfg.ProjectID) + ".api.sanity.io"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: baseURL,
		version: "v" + strings.TrimPrefix(cfg.APIVersion, "v"),
		dataset: cfg.Dataset,
		token:   cfg.Token,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), DefaultBurst),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type mutation struct {
	CreateOrReplace *interfaces.Document `json:"createOrReplace,omitempty"`
	Patch           *patchMutation       `json:"patch,omitempty"`
}

type patchMutation struct {
	ID  string         `json:"id"`
	Set map[string]any `json:"set"`
}

type mutateRequest struct {
	Mutations []mutation `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

type queryResponse struct {
	Result []*interfaces.Document `json:"result"`
}

type docResponse struct {
	Documents []*interfaces.Document `json:"documents"`
}

type assetResponse struct {
	Document struct {
		ID string `json:"_id"`
	} `json:"document"`
}

// Upsert sends a createOrReplace mutation.
func (c *Client) Upsert(ctx context.Context, doc *interfaces.Document) error {
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return errors.New("remote store: document id is required")
	}
	_, err := c.mutate(ctx, mutation{CreateOrReplace: doc})
	return err
}

// Get fetches one document by id.
func (c *Client) Get(ctx context.Context, id string) (*interfaces.Document, error) {
	endpoint := c.endpoint("data", "doc", c.dataset, url.PathEscape(id))
	var resp docResponse
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &resp); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
		}
		return nil, err
	}
	for _, doc := range resp.Documents {
		if doc != nil && doc.ID == id {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
}

// Fetch runs a type/prefix filter query.
func (c *Client) Fetch(ctx context.Context, query interfaces.DocumentQuery) ([]*interfaces.Document, error) {
	expr, params := BuildQuery(query)
	values := url.Values{}
	values.Set("query", expr)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("remote store: encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	endpoint := c.endpoint("data", "query", c.dataset) + "?" + values.Encode()

	var resp queryResponse
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*interfaces.Document, 0, len(resp.Result))
	for _, doc := range resp.Result {
		if query.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// BuildQuery renders a DocumentQuery as a filter expression and its params.
func BuildQuery(query interfaces.DocumentQuery) (string, map[string]string) {
	var clauses []string
	params := map[string]string{}
	if query.Type != "" {
		clauses = append(clauses, "_type == $type")
		params["type"] = query.Type
	}
	if query.IDPrefix != "" {
		clauses = append(clauses, "_id match $prefix")
		params["prefix"] = query.IDPrefix + "*"
	}
	if len(clauses) == 0 {
		return "*[] | order(_id asc)", params
	}
	return "*[" + strings.Join(clauses, " && ") + "] | order(_id asc)", params
}

// Patch starts a partial update of id.
func (c *Client) Patch(id string) *interfaces.Patch {
	return interfaces.NewPatch(c, id)
}

// CommitPatch sends a patch.set mutation.
func (c *Client) CommitPatch(ctx context.Context, req interfaces.PatchRequest) error {
	_, err := c.mutate(ctx, mutation{Patch: &patchMutation{ID: req.ID, Set: req.Set}})
	if IsNotFound(err) {
		return fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, req.ID)
	}
	return err
}

// UploadAsset posts raw bytes and returns the asset document id.
func (c *Client) UploadAsset(ctx context.Context, kind string, data []byte, filename string) (string, error) {
	if kind == "" {
		kind = "image"
	}
	endpoint := c.endpoint("assets", kind+"s", c.dataset) + "?" + url.Values{"filename": {filename}}.Encode()
	var resp assetResponse
	if err := c.do(ctx, http.MethodPost, endpoint, contentType(filename), bytes.NewReader(data), &resp); err != nil {
		return "", err
	}
	if resp.Document.ID == "" {
		return "", fmt.Errorf("remote store: upload %s: empty asset id", filename)
	}
	return resp.Document.ID, nil
}

func (c *Client) mutate(ctx context.Context, mutations ...mutation) (*mutateResponse, error) {
	body, err := json.Marshal(mutateRequest{Mutations: mutations})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.endpoint("data", "mutate", c.dataset)
	var resp mutateResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("remote.request", "method", method, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw)), URL: endpoint}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL + "/" + c.version + "/" + strings.Join(parts, "/")
}

func contentType(filename string) string {
	switch strings.ToLower(filename[strings.LastIndex(filename, ".")+1:]) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

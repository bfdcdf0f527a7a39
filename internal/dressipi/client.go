// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dressipi fetches related-product recommendations from a Dressipi
// deployment and renders them as an email fragment.
package dressipi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Request defaults.
const (
	DefaultTimeout = 15 * time.Second
	UserAgent      = "LLM-Mail/1.0 (+https://localhost)"
	previewLen     = 200
	maxRedirects   = 2
	maxBodyBytes   = 5 << 20
)

var (
	// ErrNoTarget is returned when neither a domain nor an account is given.
	ErrNoTarget = errors.New("dressipi: either domain or account must be provided")
	// ErrNoItem is returned when the seed item id is empty.
	ErrNoItem = errors.New("dressipi: item id is required")
)

// MalformedResponseError reports a response that is not the JSON the API
// promises, typically an HTML error page served with status 200.
type MalformedResponseError struct {
	URL         string
	ContentType string
	Preview     string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse Dressipi response as JSON. Preview: %s", e.Preview)
	}
	return fmt.Sprintf("unexpected response from Dressipi (content-type: %s). Preview: %s", e.ContentType, e.Preview)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// StatusError reports an HTTP status of 400 or above.
type StatusError struct {
	URL        string
	StatusCode int
	Preview    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dressipi request failed (status %d): %s", e.StatusCode, e.Preview)
}

// Target selects the Dressipi deployment. Domain wins over Account.
type Target struct {
	Domain  string `json:"domain,omitempty"`
	Account string `json:"account,omitempty"`
}

// BaseURL resolves the deployment root, e.g. "https://www.dressipi.acme.com".
func (t Target) BaseURL() (string, error) {
	if d := NormalizeDomain(t.Domain); d != "" {
		return "https://" + d, nil
	}
	if a := strings.TrimSpace(t.Account); a != "" {
		return "https://www.dressipi." + a + ".com", nil
	}
	return "", ErrNoTarget
}

var (
	protocolRe      = regexp.MustCompile(`(?i)^https?://`)
	dressipiPrefix  = regexp.MustCompile(`(?i)^dressipi\.`)
	wwwPrefix       = regexp.MustCompile(`(?i)^www\.`)
	dressipiSegment = regexp.MustCompile(`(?i)\.dressipi\.`)
)

// NormalizeDomain strips the protocol and trailing slashes and prefixes
// "www." to Dressipi hosts that lack it. It returns "" for blank input.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	if d == "" {
		return ""
	}
	d = protocolRe.ReplaceAllString(d, "")
	d = strings.TrimRight(d, "/")

	if dressipiPrefix.MatchString(d) {
		return "www." + d
	}
	if !wwwPrefix.MatchString(d) && dressipiSegment.MatchString(d) {
		return "www." + d
	}
	return d
}

// Payload is the related-items response. Data holds the decoded body as
// returned by the API; SeedDetail and SeedDetailError carry the outcome of
// the best-effort seed item lookup.
type Payload struct {
	Data            map[string]any
	SeedDetail      map[string]any
	SeedDetailError string
}

// MarshalJSON emits Data with seed_detail or seed_detail_error merged in.
func (p *Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Data)+1)
	for k, v := range p.Data {
		out[k] = v
	}
	if p.SeedDetail != nil {
		out["seed_detail"] = p.SeedDetail
	}
	if p.SeedDetailError != "" {
		out["seed_detail_error"] = p.SeedDetailError
	}
	return json.Marshal(out)
}

// SourceGarmentID returns source.garment_id, or "" when absent.
func (p *Payload) SourceGarmentID() string {
	src, _ := p.Data["source"].(map[string]any)
	return scalarString(src["garment_id"])
}

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseCache stores raw response bodies by URL.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Client calls the Dressipi item API.
type Client struct {
	http    HTTPDoer
	cache   ResponseCache
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) { c.http = d }
}

// WithCache caches successful responses.
func WithCache(rc ResponseCache) Option {
	return func(c *Client) { c.cache = rc }
}

// WithTimeout bounds each request. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry retries transient failures up to retries extra times, starting
// at baseDelay and doubling. It wraps whichever HTTP client is configured
// before it.
func WithRetry(retries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if retries > 0 {
			c.http = newRetryDoer(c.http, retries, baseDelay)
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("dressipi: stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRelated retrieves the items related to seedItemID. query is
// forwarded as extra query parameters and may override the defaults. When
// the response names a source garment, its detail is fetched as well; a
// failure there is recorded in Payload.SeedDetailError.
func (c *Client) FetchRelated(ctx context.Context, target Target, seedItemID string, query url.Values) (*Payload, error) {
	seedItemID = strings.TrimSpace(seedItemID)
	if seedItemID == "" {
		return nil, ErrNoItem
	}
	base, err := target.BaseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("exclude_current_garment", "true")
	params.Set("garment_format", "detailed")
	for k, vs := range query {
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		params[k] = vs
	}
	endpoint := base + "/api/items/" + url.PathEscape(seedItemID) + "/related?" + params.Encode()

	data, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	payload := &Payload{Data: data}

	if gid := payload.SourceGarmentID(); gid != "" {
		detail, err := c.FetchItem(ctx, base, gid)
		if err != nil {
			slog.Warn("dressipi seed detail failed", "garment_id", gid, "error", err)
			payload.SeedDetailError = err.Error()
		} else {
			payload.SeedDetail = detail
		}
	}
	return payload, nil
}

// FetchItem retrieves the detailed record of one garment from base.
func (c *Client) FetchItem(ctx context.Context, base, garmentID string) (map[string]any, error) {
	endpoint := strings.TrimRight(base, "/") + "/api/items/" + url.PathEscape(garmentID) + "?garment_format=detailed"
	return c.getJSON(ctx, endpoint)
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, endpoint); ok {
			var data map[string]any
			if err := json.Unmarshal(body, &data); err == nil {
				return data, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dressipi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dressipi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("dressipi read body: %w", err)
	}
	slog.Debug("dressipi response", "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Preview: preview(body)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return nil, &MalformedResponseError{URL: endpoint, ContentType: contentType, Preview: preview(body)}
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &MalformedResponseError{URL: endpoint, ContentType: contentType, Preview: preview(body), Err: err}
	}

	if c.cache != nil {
		c.cache.Set(ctx, endpoint, body)
	}
	return data, nil
}

// preview returns at most the first 200 characters of body.
func preview(body []byte) string {
	r := []rune(string(body))
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}

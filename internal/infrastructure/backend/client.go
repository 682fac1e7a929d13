// Package backend is the REST client for the task-management backend.
// Every call is attempted once; failures are reported as *domain.NetworkError
// when the backend could not be reached and *domain.HTTPError otherwise.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api/metrics"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

const maxBodyBytes = 4 << 20

// Endpoints that must never carry a bearer token.
var unauthenticated = map[string]bool{
	"/login/":         true,
	"/register/":      true,
	"/token/refresh/": true,
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	// Transport overrides the HTTP transport; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	uploadTimeout time.Duration
	log           zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

func New(opts Options, log zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		// Deadlines are per request so uploads can outlive ordinary calls.
		http:          &http.Client{Transport: opts.Transport},
		timeout:       opts.Timeout,
		uploadTimeout: opts.UploadTimeout,
		log:           log,
	}
}

// request describes one backend call. endpoint is the route template used
// for metrics; path is the concrete path.
type request struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     io.Reader
	ctype    string
	timeout  time.Duration
}

func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	return c.send(ctx, request{method: http.MethodGet, endpoint: endpoint, path: path}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint, path string, in, out any) error {
	r := request{method: method, endpoint: endpoint, path: path}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		r.body = bytes.NewReader(b)
		r.ctype = "application/json"
	}
	return c.send(ctx, r, out)
}

// upload posts a multipart form with one file part under the upload deadline.
func (c *Client) upload(ctx context.Context, endpoint, path string, file ports.Upload, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", file.Filename)
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build upload: %w", err)
	}

	return c.send(ctx, request{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     path,
		body:     &buf,
		ctype:    mw.FormDataContentType(),
		timeout:  c.uploadTimeout,
	}, out)
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if tok := ports.AccessTokenFrom(ctx); tok != "" && !unauthenticated[r.path] {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.endpoint, "network").Inc()
		c.log.Warn().Err(err).Str("method", r.method).Str("path", r.path).Msg("backend unreachable")
		return &domain.NetworkError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.endpoint, "network").Inc()
		return &domain.NetworkError{Method: r.method, Path: r.path, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		outcome := "http_4xx"
		if resp.StatusCode >= http.StatusInternalServerError {
			outcome = "http_5xx"
		}
		metrics.BackendRequestsTotal.WithLabelValues(r.endpoint, outcome).Inc()
		herr := parseError(resp.StatusCode, body)
		c.log.Debug().
			Str("method", r.method).
			Str("path", r.path).
			Int("status", resp.StatusCode).
			Str("message", herr.Message).
			Msg("backend error")
		return herr
	}
	metrics.BackendRequestsTotal.WithLabelValues(r.endpoint, "ok").Inc()

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.endpoint, err)
	}
	return nil
}

// getList reads a list endpoint that may answer with a bare array or a
// paginated {"results": [...]} envelope.
func getList[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.send(ctx, request{method: http.MethodGet, endpoint: endpoint, path: path, query: query}, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

// Ping reports whether the backend answers at all. Any HTTP status counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	err := c.get(ctx, "ping", "/", nil)
	var herr *domain.HTTPError
	if err == nil || errors.As(err, &herr) {
		return nil
	}
	return err
}

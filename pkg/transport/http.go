package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
)

// codec matches encoding/json output (sorted map keys, HTML escaping) so
// nested payloads encode deterministically.
var codec = sonic.ConfigStd

const (
	defaultTimeout  = 15 * time.Second
	defaultPathBase = "/api/form/"
	maxErrorBody    = 64 << 10
)

// ErrRejected is returned when the receiving side answers with a non-2xx
// status. Use errors.As with *RejectedError for details.
var ErrRejected = errors.New("transport: submission rejected")

// RejectedError carries the status and server description of a rejection.
type RejectedError struct {
	Status      int
	Description string
}

func (e *RejectedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("transport: submission rejected with status %d", e.Status)
	}
	return fmt.Sprintf("transport: submission rejected with status %d: %s", e.Status, e.Description)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Option configures the HTTP transport.
type Option func(*HTTP)

// WithHTTPClient overrides the client used to send payloads.
func WithHTTPClient(client *http.Client) Option {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout bounds each request made by the default client. It has no
// effect when WithHTTPClient supplies a client.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithPathBase changes the path prefix the form ID is appended to.
func WithPathBase(prefix string) Option {
	return func(h *HTTP) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed == "" {
			return
		}
		h.pathBase = "/" + strings.Trim(trimmed, "/") + "/"
	}
}

// WithHeader adds a header to every request (session cookies, CSRF tokens).
func WithHeader(name, value string) Option {
	return func(h *HTTP) {
		if strings.TrimSpace(name) == "" {
			return
		}
		h.headers.Set(name, value)
	}
}

// WithNestedKeys expands dotted payload keys into nested objects before
// encoding, for receivers that store grouped member records.
func WithNestedKeys() Option {
	return func(h *HTTP) {
		h.nested = true
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *HTTP) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// HTTP posts payloads as JSON to {base}{pathBase}{formID}. It implements
// form.Transport and performs exactly one request per Send.
type HTTP struct {
	base     *url.URL
	pathBase string
	client   *http.Client
	timeout  time.Duration
	headers  http.Header
	nested   bool
	logger   *zap.Logger
}

var _ form.Transport = (*HTTP)(nil)

// NewHTTP constructs a transport targeting baseURL.
func NewHTTP(baseURL string, options ...Option) (*HTTP, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url %q must be http or https", baseURL)
	}

	h := &HTTP{
		base:     parsed,
		pathBase: defaultPathBase,
		timeout:  defaultTimeout,
		headers:  make(http.Header),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: h.timeout}
	}
	return h, nil
}

// Endpoint returns the URL a payload for formID is posted to.
func (h *HTTP) Endpoint(formID string) string {
	target := *h.base
	target.Path = strings.TrimSuffix(target.Path, "/") + h.pathBase + url.PathEscape(formID)
	return target.String()
}

// Send implements form.Transport.
func (h *HTTP) Send(ctx context.Context, formID string, payload form.Payload) error {
	if strings.TrimSpace(formID) == "" {
		return errors.New("transport: form id is required")
	}

	var body any = payload
	if h.nested {
		body = payload.Expand()
	}
	data, err := codec.Marshal(body)
	if err != nil {
		return fmt.Errorf("transport: encode payload: %w", err)
	}

	endpoint := h.Endpoint(formID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for name, values := range h.headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	h.logger.Debug("form submitted",
		zap.String("form", formID),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{Status: resp.StatusCode, Description: describe(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// describe extracts the "description" field the member API uses for errors,
// falling back to the trimmed body text.
func describe(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Description string `json:"description"`
	}
	if err := codec.Unmarshal(raw, &envelope); err == nil && envelope.Description != "" {
		return envelope.Description
	}
	return strings.TrimSpace(string(raw))
}

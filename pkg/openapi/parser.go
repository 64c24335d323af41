package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrOperationNotFound is returned when the requested operation is absent.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Operation is the subset of an OpenAPI operation needed to build a form.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Body        *openapi3.SchemaRef
}

// Options configures parsing.
type Options struct {
	// ResolveReferences validates the document and follows external $refs.
	ResolveReferences bool
	// HTTPClient enables loading documents from http(s) locations.
	HTTPClient *http.Client
}

// Option mutates Options.
type Option func(*Options)

// WithReferenceResolution toggles validation and external reference loading.
func WithReferenceResolution(enabled bool) Option {
	return func(opts *Options) {
		opts.ResolveReferences = enabled
	}
}

// WithHTTPClient allows Load to fetch remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables remote loading with a default client.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *Options) {
		if opts.HTTPClient == nil {
			opts.HTTPClient = &http.Client{Timeout: timeout}
		}
	}
}

func newOptions(options ...Option) Options {
	cfg := Options{ResolveReferences: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Load reads an OpenAPI document from a file path or, when an HTTP client is
// configured, from an http(s) URL.
func Load(ctx context.Context, location string, options ...Option) ([]byte, error) {
	cfg := newOptions(options...)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if cfg.HTTPClient == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return loadHTTP(ctx, cfg.HTTPClient, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return data, nil
}

func loadHTTP(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openapi: fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return data, nil
}

// Operations parses raw and returns its operations keyed by operationId.
// Operations without an id are keyed "method:path".
func Operations(ctx context.Context, raw []byte, options ...Option) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := newOptions(options...)

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	operations := make(map[string]Operation)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			collect(operations, method, path, op)
		}
	}
	if len(operations) == 0 {
		return nil, errors.New("openapi: no operations extracted")
	}
	return operations, nil
}

// OperationIDs lists the keys of ops in sorted order.
func OperationIDs(ops map[string]Operation) []string {
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func collect(target map[string]Operation, method, path string, op *openapi3.Operation) {
	if op == nil {
		return
	}
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = Operation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Body:        requestSchema(op.RequestBody),
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		// Nullable unions ("string","null") collapse to the concrete type.
		for _, value := range values {
			if value != "null" {
				return value
			}
		}
		return values[0]
	}
}

package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
)

const (
	formTemplate = "form.tmpl"
	// StylesheetAsset is the asset key resolved through the theme AssetURL.
	StylesheetAsset = "forms.stylesheet"
)

// Option configures the HTML renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	theme      *theme.RendererConfig
	policy     *bluemonday.Policy
	logger     *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must contain form.tmpl and elements/<kind>.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTheme applies a resolved theme: CSS variables, stylesheet asset and
// partial overrides keyed "forms.<kind>".
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithCaptionPolicy overrides the sanitiser applied to captions.
func WithCaptionPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// RenderOptions carries per-request state.
type RenderOptions struct {
	// Prefill seeds a fresh instance when Instance is nil.
	Prefill kennel.Prefill
	// Instance renders the live widget state instead of a fresh build.
	Instance *form.Instance
	// Annotations reflects validation marks, hints and notices.
	Annotations *form.Annotations
	// Action is the form endpoint; defaults to /api/form/{id}.
	Action string
}

// Renderer turns kennel documents into HTML forms.
type Renderer struct {
	set    *pongo2.TemplateSet
	theme  *theme.RendererConfig
	policy *bluemonday.Policy
	logger *zap.Logger

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		policy:     bluemonday.UGCPolicy(),
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	r := &Renderer{
		set:       pongo2.NewSet("memberforms", pongo2.NewFSLoader(cfg.templateFS)),
		theme:     cfg.theme,
		policy:    cfg.policy,
		logger:    cfg.logger,
		templates: make(map[string]*pongo2.Template),
	}
	if _, err := r.template(formTemplate); err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the media type produced by Render.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML form for doc.
func (r *Renderer) Render(ctx context.Context, doc kennel.Document, opts RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("html renderer: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst := opts.Instance
	if inst == nil {
		built, err := kennel.Build(doc, opts.Prefill)
		if err != nil {
			return nil, fmt.Errorf("html renderer: build form: %w", err)
		}
		inst = built
	}
	annotations := opts.Annotations
	if annotations == nil {
		annotations = form.NewAnnotations(inst)
	}

	v := &viewer{inst: inst, annotations: annotations, policy: r.policy}
	body, err := r.renderElements(doc.Elements, v)
	if err != nil {
		return nil, err
	}

	action := opts.Action
	if action == "" {
		action = "/api/form/" + doc.ID
	}
	data := pongo2.Context{
		"form_id": doc.ID,
		"title":   doc.Title,
		"action":  action,
		"notices": annotations.Notices(),
		"body":    body,
	}
	r.applyTheme(data)

	tmpl, err := r.template(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("html renderer: execute %s: %w", formTemplate, err)
	}
	r.logger.Debug("form rendered",
		zap.String("form", doc.ID),
		zap.Int("widgets", inst.Len()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func (r *Renderer) renderElements(elements []kennel.Element, v *viewer) (string, error) {
	var out strings.Builder
	for _, el := range elements {
		fragment, err := r.renderElement(el, v)
		if err != nil {
			return "", err
		}
		out.WriteString(fragment)
	}
	return out.String(), nil
}

func (r *Renderer) renderElement(el kennel.Element, v *viewer) (string, error) {
	node, err := v.node(el)
	if err != nil {
		return "", fmt.Errorf("html renderer: %w", err)
	}
	if el.Input.IsHeading() {
		children, err := r.renderElements(el.Elements, v)
		if err != nil {
			return "", err
		}
		node.Children = children
	}

	name := r.elementTemplate(node.Template)
	tmpl, err := r.template(name)
	if err != nil {
		return "", fmt.Errorf("html renderer: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context{"field": node}, &buf); err != nil {
		return "", fmt.Errorf("html renderer: execute %s for %q: %w", name, el.Key, err)
	}
	return buf.String(), nil
}

// elementTemplate resolves the template for kind, honouring theme partials.
func (r *Renderer) elementTemplate(kind string) string {
	if r.theme != nil {
		if partial := strings.TrimSpace(r.theme.Partials["forms."+kind]); partial != "" {
			return partial
		}
	}
	return "elements/" + kind + ".tmpl"
}

func (r *Renderer) applyTheme(data pongo2.Context) {
	if r.theme == nil {
		return
	}
	data["theme"] = r.theme.Theme
	data["variant"] = r.theme.Variant
	data["css_vars"] = CSSVarsStyle(r.theme.CSSVars)
	if r.theme.AssetURL != nil {
		data["stylesheet"] = r.theme.AssetURL(StylesheetAsset)
	}
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

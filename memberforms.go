package memberforms

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
	"github.com/goliatone/go-memberforms/pkg/renderers/html"
	"github.com/goliatone/go-memberforms/pkg/roster"
	"github.com/goliatone/go-memberforms/pkg/transport"
)

// Option configures Forms.
type Option func(*Forms) error

// WithRoster supplies the member cache used for prefill.
func WithRoster(cache *roster.Cache) Option {
	return func(f *Forms) error {
		f.roster = cache
		return nil
	}
}

// WithHTMLOptions forwards options to the HTML renderer.
func WithHTMLOptions(options ...html.Option) Option {
	return func(f *Forms) error {
		f.htmlOptions = append(f.htmlOptions, options...)
		return nil
	}
}

// WithThemeSelector resolves name and variant through a go-theme selector and
// applies the result to rendered HTML.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(f *Forms) error {
		cfg, err := html.ThemeFromSelector(selector, name, variant)
		if err != nil {
			return err
		}
		if cfg != nil {
			f.htmlOptions = append(f.htmlOptions, html.WithTheme(cfg))
		}
		return nil
	}
}

// WithLogger attaches a structured logger shared with the renderer and engine.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Forms) error {
		if logger != nil {
			f.logger = logger
		}
		return nil
	}
}

// Forms serves the numbered form descriptions of one directory.
type Forms struct {
	fsys        fs.FS
	roster      *roster.Cache
	logger      *zap.Logger
	htmlOptions []html.Option
	renderer    *html.Renderer
}

// New constructs Forms reading descriptions from fsys.
func New(fsys fs.FS, options ...Option) (*Forms, error) {
	if fsys == nil {
		return nil, fmt.Errorf("memberforms: forms filesystem is required")
	}
	f := &Forms{fsys: fsys, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.roster == nil {
		f.roster = roster.NewCache(roster.WithLogger(f.logger))
	}

	renderer, err := html.New(append([]html.Option{html.WithLogger(f.logger)}, f.htmlOptions...)...)
	if err != nil {
		return nil, err
	}
	f.renderer = renderer
	return f, nil
}

// Roster exposes the member cache.
func (f *Forms) Roster() *roster.Cache {
	return f.roster
}

// Load resolves a form by name or navigation path ("/join/2").
func (f *Forms) Load(ref string) (kennel.Document, error) {
	name, ok := transport.FormIDFromPath(ref)
	if !ok {
		return kennel.Document{}, fmt.Errorf("%w: %q", kennel.ErrPathNotAllowed, ref)
	}
	return kennel.LoadFS(f.fsys, name)
}

// Build loads ref and builds an instance prefilled for memberID. An empty
// memberID builds a blank form.
func (f *Forms) Build(ref, memberID string) (kennel.Document, *form.Instance, error) {
	doc, err := f.Load(ref)
	if err != nil {
		return kennel.Document{}, nil, err
	}
	var prefill kennel.Prefill
	if strings.TrimSpace(memberID) != "" {
		member, err := f.roster.CheckIn(memberID)
		if err != nil {
			return kennel.Document{}, nil, err
		}
		prefill = member.Prefill()
	}
	inst, err := kennel.Build(doc, prefill)
	if err != nil {
		return kennel.Document{}, nil, err
	}
	return doc, inst, nil
}

// RenderHTML renders ref prefilled for memberID.
func (f *Forms) RenderHTML(ctx context.Context, ref, memberID string) ([]byte, error) {
	doc, inst, err := f.Build(ref, memberID)
	if err != nil {
		return nil, err
	}
	return f.renderer.Render(ctx, doc, html.RenderOptions{Instance: inst})
}

// Submit runs the required-field gate on inst and hands the payload to
// sink. On a blocked attempt the returned HTML shows the marked fields and
// the notice; it is nil on success.
func (f *Forms) Submit(ctx context.Context, doc kennel.Document, inst *form.Instance, sink form.Transport) ([]byte, error) {
	annotations := form.NewAnnotations(inst)
	engine := form.New(form.WithPresenter(annotations), form.WithLogger(f.logger))
	_, err := engine.Submit(ctx, inst, sink)
	if err == nil {
		return nil, nil
	}
	if !form.IsInputFailure(err) {
		return nil, err
	}
	page, renderErr := f.renderer.Render(ctx, doc, html.RenderOptions{Instance: inst, Annotations: annotations})
	if renderErr != nil {
		return nil, renderErr
	}
	return page, err
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

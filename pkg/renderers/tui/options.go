package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
)

const defaultMaxAttempts = 3

// Theme captures optional formatting hints applied to printed messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger attaches a structured logger, shared with the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxAttempts bounds how many submission attempts Run makes before
// giving up on a form that keeps failing the required gate.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithEngineOptions forwards options (clock, logger) to the engine Run
// creates. The presenter is always the renderer's own annotations.
func WithEngineOptions(opts ...form.EngineOption) Option {
	return func(r *Renderer) {
		r.engineOptions = append(r.engineOptions, opts...)
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
)

// Renderer fills form instances from the terminal and submits them.
type Renderer struct {
	driver        PromptDriver
	theme         Theme
	logger        *zap.Logger
	maxAttempts   int
	engineOptions []form.EngineOption
	checker       *form.Engine
}

// New constructs a TUI renderer with defaults (survey driver on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:      NewSurveyDriver(nil),
		logger:      zap.NewNop(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	r.checker = form.New(r.engineOpts()...)
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Fill prompts for every widget of inst in document order, writing answers
// back into the widgets. Current widget state is offered as the default.
func (r *Renderer) Fill(ctx context.Context, inst *form.Instance) error {
	return r.fill(ctx, inst, form.NewAnnotations(inst), nil)
}

// Run fills inst, then submits it through transport. When the required gate
// blocks the attempt, the notice is printed and only the failing widgets are
// asked again, up to the configured number of attempts.
func (r *Renderer) Run(ctx context.Context, inst *form.Instance, transport form.Transport) (form.Report, error) {
	if ctx == nil {
		return form.Report{}, errors.New("tui: context is required")
	}
	if inst == nil {
		return form.Report{}, errors.New("tui: form instance is required")
	}

	annotations := form.NewAnnotations(inst)
	engine := form.New(append(r.engineOpts(), form.WithPresenter(annotations))...)

	var only map[string]bool
	for attempt := 1; ; attempt++ {
		if err := r.fill(ctx, inst, annotations, only); err != nil {
			return form.Report{}, err
		}

		report, err := engine.Submit(ctx, inst, transport)
		if err == nil {
			r.info(ctx, r.theme.InfoPrefix+"Form submitted.")
			return report, nil
		}
		if !errors.Is(err, form.ErrRequiredFieldsMissing) {
			return report, err
		}

		for _, notice := range annotations.Notices() {
			r.info(ctx, r.theme.ErrorPrefix+notice)
		}
		annotations.ClearNotices()
		r.logger.Debug("re-prompting failing fields",
			zap.String("form", inst.ID()),
			zap.Int("attempt", attempt),
			zap.Strings("keys", report.Keys()),
		)
		if attempt >= r.maxAttempts {
			return report, err
		}

		only = make(map[string]bool, len(report.Failures))
		for _, key := range report.Keys() {
			only[key] = true
		}
	}
}

func (r *Renderer) engineOpts() []form.EngineOption {
	return append([]form.EngineOption{form.WithLogger(r.logger)}, r.engineOptions...)
}

func (r *Renderer) fill(ctx context.Context, inst *form.Instance, annotations *form.Annotations, only map[string]bool) error {
	for _, w := range inst.Widgets() {
		key := w.Descriptor().Key
		if only != nil && !only[key] {
			continue
		}
		if err := r.prompt(ctx, inst, w, annotations); err != nil {
			return fmt.Errorf("tui: prompt %s: %w", key, err)
		}
	}
	return nil
}

func (r *Renderer) prompt(ctx context.Context, inst *form.Instance, w form.Widget, annotations *form.Annotations) error {
	switch typed := w.(type) {
	case *form.Text:
		cfg := InputConfig{
			Message: r.message(typed.Descriptor(), annotations),
			Default: typed.Value,
			Help:    typed.Caption,
		}
		if typed.Required && typed.Pattern != "" {
			cfg.Validate = func(answer string) error {
				return r.checker.CheckText(typed, answer)
			}
		}
		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		typed.Value = answer
		return nil
	case *form.SingleSelect:
		return r.promptSingle(ctx, inst, typed, annotations)
	case *form.MultiSelect:
		return r.promptMulti(ctx, inst, typed, annotations)
	case *form.Signature:
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: typed.Statement,
			Help:    typed.Caption,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", form.ErrUnsupportedFieldKind, w.Kind())
	}
}

func (r *Renderer) promptSingle(ctx context.Context, inst *form.Instance, sel *form.SingleSelect, annotations *form.Annotations) error {
	defaultIndex := -1
	for i, opt := range sel.Options {
		if opt.Selected {
			defaultIndex = i
			break
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.message(sel.Descriptor(), annotations),
		Options:      optionLabels(sel.Options),
		DefaultIndex: defaultIndex,
		Help:         sel.Caption,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(sel.Options) {
		return fmt.Errorf("%w: option index %d", form.ErrInvalidWidget, idx)
	}
	value := sel.Options[idx].Value
	if err := sel.Select(value); err != nil {
		return err
	}
	if value == form.OptionOther {
		return r.promptOther(ctx, inst, sel.Key)
	}
	return nil
}

func (r *Renderer) promptMulti(ctx context.Context, inst *form.Instance, multi *form.MultiSelect, annotations *form.Annotations) error {
	var defaults []int
	for i, opt := range multi.Options {
		if opt.Selected {
			defaults = append(defaults, i)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.message(multi.Descriptor(), annotations),
		Options:  optionLabels(multi.Options),
		Defaults: defaults,
		Help:     multi.Caption,
	})
	if err != nil {
		return err
	}

	values := make([]string, 0, len(picked))
	withOther := false
	for _, idx := range picked {
		if idx < 0 || idx >= len(multi.Options) {
			return fmt.Errorf("%w: option index %d", form.ErrInvalidWidget, idx)
		}
		value := multi.Options[idx].Value
		withOther = withOther || value == form.OptionOther
		values = append(values, value)
	}
	if err := multi.SetChecked(values...); err != nil {
		return err
	}
	if withOther {
		return r.promptOther(ctx, inst, multi.Key)
	}
	return nil
}

func (r *Renderer) promptOther(ctx context.Context, inst *form.Instance, key string) error {
	other, ok := inst.Other(key)
	if !ok {
		return nil
	}
	message := other.Placeholder
	if message == "" {
		message = "Other..."
	}
	answer, err := r.driver.Input(ctx, InputConfig{
		Message: r.theme.PromptPrefix + message,
		Default: other.Value,
	})
	if err != nil {
		return err
	}
	other.Value = answer
	return nil
}

// message picks the prompt text: the label, or the annotated placeholder once
// the widget failed the required gate.
func (r *Renderer) message(field *form.Field, annotations *form.Annotations) string {
	label := field.Label
	if label == "" {
		label = field.Key
	}
	state := annotations.State(field.Key)
	if state.Invalid {
		if state.HasPlaceholder {
			label = state.Placeholder
		}
		label = form.WithRequiredSuffix(label)
	}
	return r.theme.PromptPrefix + label
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.logger.Warn("print message", zap.Error(err))
	}
}

func optionLabels(options []form.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Label
		if out[i] == "" {
			out[i] = opt.Value
		}
	}
	return out
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a text widget prompt. Validate, when set, vets each
// answer before it is accepted; the prompt repeats until it returns nil.
type InputConfig struct {
	Message  string
	Default  string
	Help     string
	Validate func(answer string) error
}

// ConfirmConfig describes the signature consent prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig lists option labels for dropdowns and radio groups (Select)
// or checkbox groups (MultiSelect). DefaultIndex is -1 when nothing is
// selected yet.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// PromptDriver is the terminal seam of the renderer. Answers come back as
// option indices so callers never match on labels.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

// NewSurveyDriver prompts on the controlling terminal. Info lines go to out,
// or stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

type surveyDriver struct {
	out io.Writer
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if validate := cfg.Validate; validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	err := ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var agreed bool
	err := ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &agreed)
	return agreed, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if label, ok := labelAt(cfg.Options, cfg.DefaultIndex); ok {
		prompt.Default = label
	}
	var index int
	if err := ask(ctx, prompt, &index); err != nil {
		return -1, err
	}
	return index, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	var checked []string
	for _, i := range cfg.Defaults {
		if label, ok := labelAt(cfg.Options, i); ok {
			checked = append(checked, label)
		}
	}
	if len(checked) > 0 {
		prompt.Default = checked
	}
	var indices []int
	if err := ask(ctx, prompt, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt. Survey writes option indices into int and
// []int responses, so no label lookup is needed afterwards.
func ask(ctx context.Context, prompt survey.Prompt, response any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func labelAt(options []string, i int) (string, bool) {
	if i < 0 || i >= len(options) {
		return "", false
	}
	return options[i], true
}

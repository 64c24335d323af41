package tui_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/renderers/tui"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	multiIdx  [][]int
	confirm   []bool

	inputPos   int
	selectPos  int
	multiPos   int
	confirmPos int

	messages   []string
	infos      []string
	validators []func(string) error
}

func (s *stubDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	s.validators = append(s.validators, cfg.Validate)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg tui.SelectConfig) ([]int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

type captureTransport struct {
	calls   int
	formID  string
	payload form.Payload
}

func (c *captureTransport) Send(_ context.Context, formID string, payload form.Payload) error {
	c.calls++
	c.formID = formID
	c.payload = payload
	return nil
}

func membershipForm(t *testing.T) *form.Instance {
	t.Helper()
	inst, err := form.NewInstance("1", []form.Widget{
		&form.Text{Field: form.Field{Key: "first_name", Label: "First name", Placeholder: "First name", Required: true}},
		&form.SingleSelect{Field: form.Field{Key: "class_standing", Label: "Class standing", Required: true}, Options: []form.Option{
			{Value: form.OptionDefault, Label: "Select...", Selected: true},
			{Value: "Freshman", Label: "Freshman"},
			{Value: "Senior", Label: "Senior"},
			{Value: form.OptionOther, Label: "Other"},
		}},
		&form.MultiSelect{Field: form.Field{Key: "ethics_form.interests", Label: "Interests"}, Options: []form.Option{
			{Value: "CTF", Label: "CTF"},
			{Value: "Talks", Label: "Talks"},
			{Value: form.OptionOther, Label: "Other"},
		}},
		&form.Signature{Field: form.Field{Key: "ethics_form.signtime"}, Statement: "I agree."},
	},
		form.NewOther("class_standing", "Class standing..."),
		form.NewOther("ethics_form.interests", "Interests..."),
	)
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return inst
}

func TestRun_RepromptsOnlyFailingFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Graduate", "Crypto", "Ada"},
		selectIdx: []int{3},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true},
	}
	clock := func() time.Time { return time.UnixMilli(1700000000000) }
	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithEngineOptions(form.WithClock(clock)),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	transport := &captureTransport{}
	inst := membershipForm(t)
	report, err := renderer.Run(context.Background(), inst, transport)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected final report to pass, got %+v", report)
	}
	if transport.calls != 1 || transport.formID != "1" {
		t.Fatalf("expected one send for form 1, got %d for %q", transport.calls, transport.formID)
	}

	want := map[string]any{
		"first_name":            "Ada",
		"class_standing":        "Graduate",
		"ethics_form.interests": "CTF, Crypto",
		"ethics_form.signtime":  "1700000000000",
	}
	if diff := cmp.Diff(want, transport.payload.Map()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	wantMessages := []string{
		"First name",
		"Class standing",
		"Class standing...",
		"Interests",
		"Interests...",
		"I agree.",
		"First name (required!)",
	}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
	wantInfos := []string{form.RequiredNotice, "Form submitted."}
	if diff := cmp.Diff(wantInfos, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "", ""},
		selectIdx: []int{1},
		multiIdx:  [][]int{{}},
		confirm:   []bool{true},
	}
	renderer, err := tui.New(tui.WithPromptDriver(driver), tui.WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	transport := &captureTransport{}
	report, err := renderer.Run(context.Background(), membershipForm(t), transport)
	if !errors.Is(err, form.ErrRequiredFieldsMissing) {
		t.Fatalf("expected ErrRequiredFieldsMissing, got %v", err)
	}
	if diff := cmp.Diff([]string{"first_name"}, report.Keys()); diff != "" {
		t.Fatalf("failing keys mismatch (-want +got):\n%s", diff)
	}
	if transport.calls != 0 {
		t.Fatalf("transport must not be contacted, got %d calls", transport.calls)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected two text prompts, got %d", driver.inputPos)
	}
}

func TestRun_SignatureDeclined(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{1},
		multiIdx:  [][]int{{1}},
		confirm:   []bool{false},
	}
	renderer, err := tui.New(tui.WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	transport := &captureTransport{}
	if _, err := renderer.Run(context.Background(), membershipForm(t), transport); !errors.Is(err, tui.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("transport must not be contacted")
	}
}

func TestFill_KeepsDefaults(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{2},
		multiIdx:  [][]int{{1}},
		confirm:   []bool{true},
	}
	renderer, err := tui.New(tui.WithPromptDriver(driver), tui.WithTheme(tui.Theme{PromptPrefix: "> "}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	inst := membershipForm(t)
	if err := renderer.Fill(context.Background(), inst); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.messages[0] != "> First name" {
		t.Fatalf("theme prefix not applied: %q", driver.messages[0])
	}
	w, _ := inst.Widget("class_standing")
	if got, _ := w.(*form.SingleSelect).Selected(); got != "Senior" {
		t.Fatalf("expected Senior, got %q", got)
	}
	w, _ = inst.Widget("ethics_form.interests")
	value, err := inst.Extract(w)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if value.String() != "Talks" {
		t.Fatalf("expected Talks, got %q", value.String())
	}
}

func TestFill_ValidatesPatternAtPrompt(t *testing.T) {
	nid := &form.Text{Field: form.Field{Key: "nid", Label: "NID", Required: true, Pattern: "^([a-z]{2}[0-9]{6})$"}}
	name := &form.Text{Field: form.Field{Key: "first_name", Label: "First name", Required: true}}
	inst, err := form.NewInstance("1", []form.Widget{nid, name})
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	driver := &stubDriver{inputs: []string{"ab123456", "Ada"}}
	renderer, err := tui.New(tui.WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := renderer.Fill(context.Background(), inst); err != nil {
		t.Fatalf("fill: %v", err)
	}

	if len(driver.validators) != 2 {
		t.Fatalf("expected two text prompts, got %d", len(driver.validators))
	}
	validate := driver.validators[0]
	if validate == nil {
		t.Fatalf("patterned field prompted without a validator")
	}
	if err := validate("zz"); !errors.Is(err, form.ErrPatternMismatch) {
		t.Fatalf("expected ErrPatternMismatch, got %v", err)
	}
	if err := validate(""); err != nil {
		t.Fatalf("empty answer must reach the required gate, got %v", err)
	}
	if err := validate("ab123456"); err != nil {
		t.Fatalf("matching answer rejected: %v", err)
	}
	if driver.validators[1] != nil {
		t.Fatalf("field without pattern must not be validated at prompt")
	}
	if nid.Value != "ab123456" {
		t.Fatalf("answer not written back: %q", nid.Value)
	}
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
	"github.com/goliatone/go-memberforms/pkg/roster"
	"github.com/goliatone/go-memberforms/pkg/transport"
)

// resolveDocument loads ref as a file when one exists, otherwise as a form
// name (or navigation path such as "/join/2") inside formsDir.
func resolveDocument(ref, formsDir string) (kennel.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return kennel.Document{}, goerr.New("a form file or name is required")
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return kennel.LoadFile(ref)
	}
	name, ok := transport.FormIDFromPath(ref)
	if !ok {
		return kennel.Document{}, goerr.New("cannot derive a form name", goerr.V("form", ref))
	}
	if formsDir == "" {
		formsDir = "."
	}
	return kennel.LoadFS(os.DirFS(formsDir), name)
}

// loadRoster reads a JSON array of member records into a cache.
func loadRoster(path string) (*roster.Cache, error) {
	cache := roster.NewCache()
	if path == "" {
		return cache, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read members", goerr.V("path", path))
	}
	var members []roster.Member
	if err := sonic.Unmarshal(data, &members); err != nil {
		return nil, goerr.Wrap(err, "failed to parse members", goerr.V("path", path))
	}
	for i, member := range members {
		if _, err := cache.Put(member); err != nil {
			return nil, goerr.Wrap(err, "invalid member record", goerr.V("index", i))
		}
	}
	return cache, nil
}

// prefillFor resolves the member scanned or typed as raw. An empty raw
// yields no prefill.
func prefillFor(cache *roster.Cache, raw string) (kennel.Prefill, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	member, err := cache.CheckIn(raw)
	if err != nil {
		return nil, err
	}
	return member.Prefill(), nil
}

// applyAnswers writes recorded answers into inst. Select values that are not
// offered choose "_other" and fill its free-text sibling; selects without
// "_other" are left unselected. Checkbox answers are lists.
func applyAnswers(inst *form.Instance, answers map[string]any) error {
	for key, raw := range answers {
		w, ok := inst.Widget(key)
		if !ok {
			return goerr.Wrap(form.ErrInvalidWidget, "answer names no widget", goerr.V(form.KeyField, key))
		}
		if err := applyAnswer(inst, w, raw); err != nil {
			return err
		}
	}
	return nil
}

func applyAnswer(inst *form.Instance, w form.Widget, raw any) error {
	key := w.Descriptor().Key
	switch typed := w.(type) {
	case *form.Text:
		typed.Value = answerText(raw)
	case *form.SingleSelect:
		value := answerText(raw)
		switch {
		case value != "" && offered(typed.Options, value):
			return typed.Select(value)
		case value != "" && offered(typed.Options, form.OptionOther):
			if err := typed.Select(form.OptionOther); err != nil {
				return err
			}
			return setOther(inst, key, value)
		default:
			// Blank or not a choice: leave nothing selected for the gate.
			clearSelection(typed)
		}
	case *form.MultiSelect:
		list, ok := raw.([]any)
		if !ok && raw != nil {
			return goerr.Wrap(form.ErrInvalidWidget, "checkbox answers must be a list", goerr.V(form.KeyField, key))
		}
		var checked, other []string
		for _, item := range list {
			value := answerText(item)
			switch {
			case value == "":
			case offered(typed.Options, value):
				checked = append(checked, value)
			case offered(typed.Options, form.OptionOther):
				other = append(other, value)
			}
		}
		if len(other) > 0 {
			checked = append(checked, form.OptionOther)
		}
		if err := typed.SetChecked(checked...); err != nil {
			return err
		}
		if len(other) > 0 {
			return setOther(inst, key, strings.Join(other, ", "))
		}
	case *form.Signature:
		// Stamped at submission.
	default:
		return fmt.Errorf("%w: %s", form.ErrUnsupportedFieldKind, w.Kind())
	}
	return nil
}

func clearSelection(sel *form.SingleSelect) {
	if offered(sel.Options, form.OptionDefault) {
		_ = sel.Select(form.OptionDefault)
		return
	}
	for i := range sel.Options {
		sel.Options[i].Selected = false
	}
}

func setOther(inst *form.Instance, key, value string) error {
	text, ok := inst.Other(key)
	if !ok {
		return goerr.Wrap(form.ErrInvalidWidget, "widget has no other field", goerr.V(form.KeyField, key))
	}
	text.Value = value
	return nil
}

func offered(options []form.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func answerText(raw any) string {
	switch typed := raw.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(typed)
	}
}

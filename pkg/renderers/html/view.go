package html

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
)

// node is the template view of one element.
type node struct {
	Template    string
	Tag         string
	Key         string
	Label       string
	Caption     string
	Type        string
	Value       string
	Placeholder string
	Pattern     string
	Required    bool
	Invalid     bool
	Slider      bool
	Options     []optionNode
	Other       *otherNode
	Statement   string
	NoviceLabel string
	ExpertLabel string
	Prev        string
	PrevLabel   string
	Next        string
	NextLabel   string
	Children    string
}

type optionNode struct {
	ID       string
	Value    string
	Label    string
	Selected bool
	Disabled bool
}

type otherNode struct {
	ID          string
	Value       string
	Placeholder string
}

type viewer struct {
	inst        *form.Instance
	annotations *form.Annotations
	policy      *bluemonday.Policy
}

func (v *viewer) node(el kennel.Element) (*node, error) {
	n := &node{
		Key:     el.Key,
		Label:   el.Label,
		Caption: v.policy.Sanitize(el.Caption),
	}

	switch {
	case el.Input.IsHeading():
		n.Template = "heading"
		n.Tag = string(el.Input)
		return n, nil
	case el.Input == kennel.InputNavigation:
		n.Template = "navigation"
		n.Prev, n.PrevLabel = el.Prev, fallback(el.PrevLabel, "Back")
		n.Next, n.NextLabel = fallback(el.Next, "#"), fallback(el.NextLabel, "Next")
		return n, nil
	}

	w, ok := v.inst.Widget(el.Key)
	if !ok {
		return nil, fmt.Errorf("%w: no widget for %q", form.ErrInvalidWidget, el.Key)
	}
	desc := w.Descriptor()
	state := v.annotations.State(desc.Key)
	n.Required = desc.Required
	n.Pattern = desc.Pattern
	n.Invalid = state.Invalid
	n.Placeholder = desc.Placeholder
	if state.HasPlaceholder {
		n.Placeholder = state.Placeholder
	}

	switch typed := w.(type) {
	case *form.Text:
		n.Template = "text"
		n.Type = "text"
		if el.Input == kennel.InputEmail {
			n.Type = "email"
		}
		n.Value = typed.Value
	case *form.SingleSelect:
		n.Options = v.options("radio", typed.Key, typed.Options)
		if typed.Radio {
			n.Template = "radio"
			if el.Input == kennel.InputSlider {
				n.Slider = true
				n.NoviceLabel = fallback(el.NoviceLabel, "Novice")
				n.ExpertLabel = fallback(el.ExpertLabel, "Expert")
			}
			break
		}
		n.Template = "dropdown"
		n.Other = v.other(typed.Key)
	case *form.MultiSelect:
		n.Template = "checkbox"
		n.Options = v.options("checkbox", typed.Key, typed.Options)
		n.Other = v.other(typed.Key)
	case *form.Signature:
		n.Template = "signature"
		n.Statement = typed.Statement
	default:
		return nil, fmt.Errorf("%w: %s", form.ErrUnsupportedFieldKind, w.Kind())
	}
	return n, nil
}

func (v *viewer) options(prefix, key string, options []form.Option) []optionNode {
	out := make([]optionNode, 0, len(options))
	for _, opt := range options {
		suffix := opt.Value
		if opt.Value == form.OptionOther {
			suffix = "OTHER"
		}
		out = append(out, optionNode{
			ID:       prefix + "_" + form.OtherID(key) + "_" + suffix,
			Value:    opt.Value,
			Label:    fallback(opt.Label, opt.Value),
			Selected: opt.Selected,
			Disabled: opt.Value == form.OptionDefault,
		})
	}
	return out
}

func (v *viewer) other(key string) *otherNode {
	text, ok := v.inst.Other(key)
	if !ok {
		return nil
	}
	return &otherNode{ID: text.Key, Value: text.Value, Placeholder: text.Placeholder}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

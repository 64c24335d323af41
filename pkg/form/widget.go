package form

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Field carries the attributes every widget shares. Pattern is only consulted
// when Required is set; an empty Pattern means no pattern was declared.
type Field struct {
	Key         string
	Label       string
	Caption     string
	Placeholder string
	Required    bool
	Pattern     string
}

// Descriptor exposes the shared attributes of the widget embedding Field.
func (f *Field) Descriptor() *Field {
	return f
}

// Widget is a rendered input unit. The concrete variants are *Text,
// *SingleSelect, *MultiSelect and *Signature; anything else is rejected by
// extraction with ErrUnsupportedFieldKind.
type Widget interface {
	Kind() Kind
	Descriptor() *Field
}

// Text is a free-text input. Value holds the current literal text.
type Text struct {
	Field
	Value string
}

func (*Text) Kind() Kind { return KindText }

// Option is one entry of a choice widget. Selected doubles as the checked
// state for checkbox groups.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// SingleSelect is a dropdown or radio group resolving to at most one option.
// Radio switches the presentation to a grouped widget.
type SingleSelect struct {
	Field
	Options []Option
	Radio   bool
}

func (*SingleSelect) Kind() Kind { return KindSingleSelect }

// Select marks the option carrying value as the only selected one.
func (s *SingleSelect) Select(value string) error {
	idx := optionIndex(s.Options, value)
	if idx < 0 {
		return goerr.Wrap(ErrInvalidWidget, "option not offered",
			goerr.V(KeyField, s.Key), goerr.V(KeyOption, value))
	}
	for i := range s.Options {
		s.Options[i].Selected = i == idx
	}
	return nil
}

// Selected returns the value of the first selected option.
func (s *SingleSelect) Selected() (string, bool) {
	for _, opt := range s.Options {
		if opt.Selected {
			return opt.Value, true
		}
	}
	return "", false
}

// MultiSelect is a checkbox group.
type MultiSelect struct {
	Field
	Options []Option
}

func (*MultiSelect) Kind() Kind { return KindMultiSelect }

// SetChecked replaces the checked state so that exactly the listed values are
// checked. Unknown values are reported and leave the widget untouched.
func (m *MultiSelect) SetChecked(values ...string) error {
	want := make(map[string]struct{}, len(values))
	for _, value := range values {
		if optionIndex(m.Options, value) < 0 {
			return goerr.Wrap(ErrInvalidWidget, "option not offered",
				goerr.V(KeyField, m.Key), goerr.V(KeyOption, value))
		}
		want[value] = struct{}{}
	}
	for i := range m.Options {
		_, ok := want[m.Options[i].Value]
		m.Options[i].Selected = ok
	}
	return nil
}

// Signature is a consent statement. Its payload value is always the
// submission timestamp; Statement is presentation only.
type Signature struct {
	Field
	Statement string
}

func (*Signature) Kind() Kind { return KindSignature }

// OtherID derives the identifier of the free-text sibling paired with a
// select widget offering "_other".
func OtherID(key string) string {
	return strings.NewReplacer(".", "_", " ", "_").Replace(key)
}

// NewOther builds the free-text sibling for the select widget owning key.
func NewOther(key, placeholder string) *Text {
	return &Text{Field: Field{Key: OtherID(key), Placeholder: placeholder}}
}

func optionIndex(options []Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

func offersOther(w Widget) bool {
	switch typed := w.(type) {
	case *SingleSelect:
		return optionIndex(typed.Options, OptionOther) >= 0
	case *MultiSelect:
		return optionIndex(typed.Options, OptionOther) >= 0
	default:
		return false
	}
}

// markStyle picks the invalid treatment: choice groups are outlined as a
// whole, single-value inputs get the field treatment.
func markStyle(w Widget) MarkStyle {
	switch typed := w.(type) {
	case *MultiSelect:
		return MarkGroup
	case *SingleSelect:
		if typed.Radio {
			return MarkGroup
		}
	}
	return MarkField
}

package form

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const multiSeparator = ", "

// Extract resolves the current value of a primary widget. "No value" is the
// absent Value, never an error; errors are reserved for schema problems such
// as an unsupported kind or a signature, which is only stamped by BuildPayload.
func (f *Instance) Extract(w Widget) (Value, error) {
	switch typed := w.(type) {
	case *Text:
		return ValueOf(typed.Value), nil
	case *SingleSelect:
		return f.extractSingle(typed), nil
	case *MultiSelect:
		return f.extractMulti(typed), nil
	case *Signature:
		return Value{}, goerr.Wrap(ErrSignatureNotExtractable, "signature has no widget value",
			goerr.V(KeyField, typed.Key))
	default:
		return Value{}, unsupported(w)
	}
}

func (f *Instance) extractSingle(s *SingleSelect) Value {
	selected, ok := s.Selected()
	if !ok {
		return Value{}
	}
	switch selected {
	case OptionDefault:
		return Value{}
	case OptionOther:
		return f.otherText(s.Key)
	default:
		return ValueOf(selected)
	}
}

func (f *Instance) extractMulti(m *MultiSelect) Value {
	parts := make([]string, 0, len(m.Options))
	for _, opt := range m.Options {
		if !opt.Selected {
			continue
		}
		if opt.Value == OptionOther {
			if text, ok := f.otherText(m.Key).Get(); ok {
				parts = append(parts, text)
			}
			continue
		}
		if opt.Value == "" {
			continue
		}
		parts = append(parts, opt.Value)
	}
	return ValueOf(strings.Join(parts, multiSeparator))
}

func (f *Instance) otherText(key string) Value {
	other, ok := f.Other(key)
	if !ok {
		return Value{}
	}
	return ValueOf(other.Value)
}

func unsupported(w Widget) error {
	opts := []goerr.Option{goerr.V(KeyKind, "<nil>")}
	if w != nil {
		opts = []goerr.Option{goerr.V(KeyKind, w.Kind())}
		if desc := w.Descriptor(); desc != nil {
			opts = append(opts, goerr.V(KeyField, desc.Key))
		}
	}
	return goerr.Wrap(ErrUnsupportedFieldKind, "cannot extract widget", opts...)
}

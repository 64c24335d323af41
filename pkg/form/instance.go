package form

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Instance is one rendered occurrence of a form: an ordered set of widgets
// plus the free-text siblings backing "_other" options. The engine never
// iterates siblings as primary widgets.
type Instance struct {
	id      string
	widgets []Widget
	index   map[string]Widget
	others  map[string]*Text
}

// NewInstance validates the widget set and returns the instance. Keys must be
// non-empty and unique, sentinels must be used where they are understood, and
// every select offering "_other" must have its sibling among others. A
// sibling id may only be claimed by one select and must not name another
// primary widget.
func NewInstance(id string, widgets []Widget, others ...*Text) (*Instance, error) {
	inst := &Instance{
		id:      strings.TrimSpace(id),
		widgets: make([]Widget, 0, len(widgets)),
		index:   make(map[string]Widget, len(widgets)),
		others:  make(map[string]*Text, len(others)),
	}

	for _, other := range others {
		if other == nil {
			continue
		}
		if other.Key == "" {
			return nil, goerr.Wrap(ErrInvalidWidget, "other widget has an empty id", goerr.V(KeyForm, inst.id))
		}
		inst.others[other.Key] = other
	}

	for _, w := range widgets {
		if w == nil {
			continue
		}
		if err := inst.add(w); err != nil {
			return nil, err
		}
	}
	if err := inst.checkOtherIDs(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (f *Instance) checkOtherIDs() error {
	owners := make(map[string]string)
	for _, w := range f.widgets {
		if !offersOther(w) {
			continue
		}
		key := w.Descriptor().Key
		id := OtherID(key)
		if owner, taken := owners[id]; taken {
			return goerr.Wrap(ErrInvalidWidget, "other input id shared by two selects",
				goerr.V(KeyForm, f.id), goerr.V(KeyField, key), goerr.V(KeyOther, id), goerr.V("owner", owner))
		}
		owners[id] = key
		if _, clash := f.index[id]; clash && id != key {
			return goerr.Wrap(ErrInvalidWidget, "other input id collides with a widget key",
				goerr.V(KeyForm, f.id), goerr.V(KeyField, key), goerr.V(KeyOther, id))
		}
	}
	return nil
}

func (f *Instance) add(w Widget) error {
	desc := w.Descriptor()
	if desc == nil || desc.Key == "" {
		return goerr.Wrap(ErrInvalidWidget, "widget key is empty",
			goerr.V(KeyForm, f.id), goerr.V(KeyKind, w.Kind()))
	}
	if _, exists := f.index[desc.Key]; exists {
		return goerr.Wrap(ErrInvalidWidget, "duplicate widget key",
			goerr.V(KeyForm, f.id), goerr.V(KeyField, desc.Key))
	}

	switch typed := w.(type) {
	case *SingleSelect:
		if err := checkOptions(desc.Key, typed.Options, true); err != nil {
			return err
		}
	case *MultiSelect:
		if err := checkOptions(desc.Key, typed.Options, false); err != nil {
			return err
		}
	}

	if offersOther(w) {
		if _, ok := f.others[OtherID(desc.Key)]; !ok {
			return goerr.Wrap(ErrInvalidWidget, "select offers _other without a sibling input",
				goerr.V(KeyForm, f.id), goerr.V(KeyField, desc.Key))
		}
	}

	f.widgets = append(f.widgets, w)
	f.index[desc.Key] = w
	return nil
}

func checkOptions(key string, options []Option, allowDefault bool) error {
	others := 0
	for _, opt := range options {
		switch opt.Value {
		case OptionOther:
			others++
		case OptionDefault:
			if !allowDefault {
				return goerr.Wrap(ErrInvalidWidget, "_default is only understood by single selects",
					goerr.V(KeyField, key))
			}
		}
	}
	if others > 1 {
		return goerr.Wrap(ErrInvalidWidget, "more than one _other option", goerr.V(KeyField, key))
	}
	return nil
}

// ID returns the form identifier.
func (f *Instance) ID() string {
	if f == nil {
		return ""
	}
	return f.id
}

// Widgets returns the primary widgets in document order.
func (f *Instance) Widgets() []Widget {
	if f == nil {
		return nil
	}
	return append([]Widget(nil), f.widgets...)
}

// Widget looks up a primary widget by key.
func (f *Instance) Widget(key string) (Widget, bool) {
	if f == nil {
		return nil, false
	}
	w, ok := f.index[key]
	return w, ok
}

// Other returns the free-text sibling paired with the widget owning key.
func (f *Instance) Other(key string) (*Text, bool) {
	if f == nil {
		return nil, false
	}
	other, ok := f.others[OtherID(key)]
	return other, ok
}

// Len reports the number of primary widgets.
func (f *Instance) Len() int {
	if f == nil {
		return 0
	}
	return len(f.widgets)
}

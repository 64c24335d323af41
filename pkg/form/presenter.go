package form

import (
	"sort"
	"strings"
)

// RequiredSuffix is appended to the placeholder of a widget failing the
// required-field gate.
const RequiredSuffix = " (required!)"

// RequiredNotice is the single aggregate message emitted when a submission
// attempt is blocked.
const RequiredNotice = "Please fill out all required fields."

// MarkStyle selects how an invalid widget is highlighted.
type MarkStyle int

const (
	// MarkField highlights a single-value input.
	MarkField MarkStyle = iota + 1
	// MarkGroup outlines a choice group (radio or checkbox set).
	MarkGroup
)

func (s MarkStyle) String() string {
	switch s {
	case MarkField:
		return "field"
	case MarkGroup:
		return "group"
	default:
		return ""
	}
}

// Presenter receives the visual side effects of validation. Implementations
// write to whatever presentation layer the surface owns.
type Presenter interface {
	MarkInvalid(key string, style MarkStyle)
	ClearInvalid(key string)
	// Placeholder returns the current hint; ok is false when the widget has none.
	Placeholder(key string) (text string, ok bool)
	SetPlaceholder(key, text string)
	Notify(message string)
}

// WithRequiredSuffix appends RequiredSuffix once.
func WithRequiredSuffix(placeholder string) string {
	if strings.HasSuffix(placeholder, RequiredSuffix) {
		return placeholder
	}
	return placeholder + RequiredSuffix
}

// WithoutRequiredSuffix strips every trailing RequiredSuffix.
func WithoutRequiredSuffix(placeholder string) string {
	for strings.HasSuffix(placeholder, RequiredSuffix) {
		placeholder = strings.TrimSuffix(placeholder, RequiredSuffix)
	}
	return placeholder
}

type nopPresenter struct{}

func (nopPresenter) MarkInvalid(string, MarkStyle) {}
func (nopPresenter) ClearInvalid(string) {}
func (nopPresenter) Placeholder(string) (string, bool) { return "", false }
func (nopPresenter) SetPlaceholder(string, string) {}
func (nopPresenter) Notify(string) {}

// FieldState is the presentation state Annotations tracks per widget.
type FieldState struct {
	Invalid        bool
	Style          MarkStyle
	Placeholder    string
	HasPlaceholder bool
}

// Annotations is an in-memory Presenter. Surfaces read it back when drawing.
type Annotations struct {
	fields  map[string]*FieldState
	notices []string
}

// NewAnnotations seeds placeholder hints from the widgets of inst.
func NewAnnotations(inst *Instance) *Annotations {
	a := &Annotations{fields: make(map[string]*FieldState)}
	for _, w := range inst.Widgets() {
		desc := w.Descriptor()
		if desc.Placeholder == "" {
			continue
		}
		a.state(desc.Key).Placeholder = desc.Placeholder
		a.state(desc.Key).HasPlaceholder = true
	}
	return a
}

func (a *Annotations) state(key string) *FieldState {
	if a.fields == nil {
		a.fields = make(map[string]*FieldState)
	}
	st, ok := a.fields[key]
	if !ok {
		st = &FieldState{}
		a.fields[key] = st
	}
	return st
}

func (a *Annotations) MarkInvalid(key string, style MarkStyle) {
	st := a.state(key)
	st.Invalid = true
	st.Style = style
}

func (a *Annotations) ClearInvalid(key string) {
	st := a.state(key)
	st.Invalid = false
	st.Style = 0
}

func (a *Annotations) Placeholder(key string) (string, bool) {
	st, ok := a.fields[key]
	if !ok || !st.HasPlaceholder {
		return "", false
	}
	return st.Placeholder, true
}

func (a *Annotations) SetPlaceholder(key, text string) {
	st := a.state(key)
	st.Placeholder = text
	st.HasPlaceholder = true
}

func (a *Annotations) Notify(message string) {
	a.notices = append(a.notices, message)
}

// State returns a copy of the tracked state for key.
func (a *Annotations) State(key string) FieldState {
	if st, ok := a.fields[key]; ok {
		return *st
	}
	return FieldState{}
}

// Invalid returns the keys currently marked invalid, sorted.
func (a *Annotations) Invalid() []string {
	var keys []string
	for key, st := range a.fields {
		if st.Invalid {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Notices returns the notices emitted so far.
func (a *Annotations) Notices() []string {
	return append([]string(nil), a.notices...)
}

// ClearNotices drops emitted notices, typically once they were shown.
func (a *Annotations) ClearNotices() {
	a.notices = nil
}

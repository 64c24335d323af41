package kennel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-memberforms/pkg/form"
)

// ErrInvalidElement reports a field element that cannot become a widget.
var ErrInvalidElement = goerr.New("invalid form element")

// Labels shown for the sentinel options.
const (
	DefaultOptionLabel = "Select..."
	OtherOptionLabel   = "Other"
)

// Prefill holds stored member data keyed like the form description. Nested
// maps are reachable through dotted keys ("discord.email").
type Prefill map[string]any

// Lookup resolves key, first as a literal key and then as a dotted path.
func (p Prefill) Lookup(key string) (any, bool) {
	if p == nil || key == "" {
		return nil, false
	}
	if value, ok := p[key]; ok {
		return value, true
	}
	var current any = map[string]any(p)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (p Prefill) text(key string) string {
	value, ok := p.Lookup(key)
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Prefill:
		return typed, true
	default:
		return nil, false
	}
}

// Build turns a form description into a live form instance seeded with
// prefill. Headings, paragraphs and navigation produce no widgets; their
// nested elements are flattened in document order.
func Build(doc Document, prefill Prefill) (*form.Instance, error) {
	b := &builder{prefill: prefill}
	if err := doc.Walk(b.visit); err != nil {
		return nil, err
	}
	return form.NewInstance(doc.ID, b.widgets, b.others...)
}

type builder struct {
	prefill Prefill
	widgets []form.Widget
	others  []*form.Text
}

func (b *builder) visit(el Element) error {
	if el.Input.IsHeading() || el.Input == InputNavigation {
		return nil
	}
	if !el.Input.IsField() {
		return goerr.Wrap(form.ErrUnsupportedFieldKind, "unknown input type",
			goerr.V("input", string(el.Input)), goerr.V(form.KeyField, el.Key))
	}
	if strings.TrimSpace(el.Key) == "" {
		return goerr.Wrap(ErrInvalidElement, "field element has no key", goerr.V("input", string(el.Input)))
	}

	field := form.Field{
		Key:      el.Key,
		Label:    el.Label,
		Caption:  el.Caption,
		Required: el.Required,
		Pattern:  el.Pattern(),
	}

	switch el.Input {
	case InputText, InputEmail, InputNID:
		field.Placeholder = el.Label
		b.widgets = append(b.widgets, &form.Text{Field: field, Value: b.textPrefill(el)})
	case InputRadio:
		sel := &form.SingleSelect{Field: field, Options: plainOptions(el.Options), Radio: true}
		b.preselect(sel, radioPrefill(b.prefilled(el)))
		b.widgets = append(b.widgets, sel)
	case InputSlider:
		steps := make([]string, 0, SliderSteps)
		for i := 1; i <= SliderSteps; i++ {
			steps = append(steps, strconv.Itoa(i))
		}
		sel := &form.SingleSelect{Field: field, Options: plainOptions(steps), Radio: true}
		b.preselect(sel, b.prefilled(el))
		b.widgets = append(b.widgets, sel)
	case InputDropdown:
		return b.dropdown(el, field)
	case InputCheckbox:
		if len(el.Options) == 0 {
			return goerr.Wrap(ErrInvalidElement, "checkbox needs options", goerr.V(form.KeyField, el.Key))
		}
		options := append(plainOptions(el.Options), form.Option{Value: form.OptionOther, Label: OtherOptionLabel})
		b.widgets = append(b.widgets, &form.MultiSelect{Field: field, Options: options})
		b.others = append(b.others, form.NewOther(el.Key, otherPlaceholder(el)))
	case InputSignature:
		b.widgets = append(b.widgets, &form.Signature{Field: field, Statement: SignatureStatement(b.prefill)})
	}
	return nil
}

func (b *builder) dropdown(el Element, field form.Field) error {
	if len(el.Options) == 0 && !el.Other {
		return goerr.Wrap(ErrInvalidElement, "dropdown needs options", goerr.V(form.KeyField, el.Key))
	}
	options := []form.Option{{Value: form.OptionDefault, Label: DefaultOptionLabel}}
	options = append(options, plainOptions(el.Options)...)
	if el.Other {
		options = append(options, form.Option{Value: form.OptionOther, Label: OtherOptionLabel})
		b.others = append(b.others, form.NewOther(el.Key, otherPlaceholder(el)))
	}
	sel := &form.SingleSelect{Field: field, Options: options}

	value := b.prefilled(el)
	if value == "" || sel.Select(value) != nil {
		_ = sel.Select(form.OptionDefault)
	}
	b.widgets = append(b.widgets, sel)
	return nil
}

func (b *builder) prefilled(el Element) string {
	if !el.PrefillEnabled() {
		return ""
	}
	return b.prefill.text(el.Key)
}

// textPrefill seeds text inputs; email falls back to the address linked
// through Discord when the member has none on file.
func (b *builder) textPrefill(el Element) string {
	value := b.prefilled(el)
	if value == "" && el.PrefillEnabled() && el.Key == "email" {
		value = b.prefill.text("discord.email")
	}
	return value
}

// preselect selects value when offered; unknown values leave the widget
// unselected.
func (b *builder) preselect(sel *form.SingleSelect, value string) {
	if value == "" {
		return
	}
	_ = sel.Select(value)
}

func radioPrefill(value string) string {
	switch value {
	case "True", "true":
		return "Yes"
	case "False", "false":
		return "No"
	default:
		return value
	}
}

func plainOptions(values []string) []form.Option {
	out := make([]form.Option, 0, len(values))
	for _, value := range values {
		out = append(out, form.Option{Value: value, Label: value})
	}
	return out
}

func otherPlaceholder(el Element) string {
	label := el.Label
	if label == "" {
		label = OtherOptionLabel
	}
	return label + "..."
}

// SignatureStatement renders the consent sentence shown next to a signature.
func SignatureStatement(prefill Prefill) string {
	name := strings.TrimSpace(prefill.text("first_name"))
	if name == "" {
		name = "Member #" + prefill.text("id")
	}
	if surname := strings.TrimSpace(prefill.text("surname")); surname != "" {
		name += " " + surname
	}
	return fmt.Sprintf("By submitting this form, you, %s, agree to the above terms. This form will be time-stamped.", name)
}

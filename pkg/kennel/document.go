package kennel

import "strings"

// Input identifies the element type of a form description entry.
type Input string

const (
	InputH1         Input = "h1"
	InputH2         Input = "h2"
	InputH3         Input = "h3"
	InputParagraph  Input = "p"
	InputText       Input = "text"
	InputEmail      Input = "email"
	InputNID        Input = "nid"
	InputRadio      Input = "radio"
	InputCheckbox   Input = "checkbox"
	InputDropdown   Input = "dropdown"
	InputSlider     Input = "slider"
	InputSignature  Input = "signature"
	InputNavigation Input = "navigation"
)

// Validation patterns attached to typed text inputs.
const (
	PatternEmail       = `([A-Za-z0-9.-_+]+)@[A-Za-z0-9-]+(.[A-Za-z-]{2,})`
	PatternEmailPrefix = `([A-Za-z0-9.-_+]+)@`
	PatternNID         = `^([a-z]{2}[0-9]{6})$`
)

// SliderSteps is the number of points on a slider scale.
const SliderSteps = 5

// Element is one entry of a form description. Headings and paragraphs may
// nest further elements; the remaining fields apply per input type.
type Element struct {
	Input    Input     `json:"input" yaml:"input" toml:"input"`
	Key      string    `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Caption  string    `json:"caption,omitempty" yaml:"caption,omitempty" toml:"caption,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Other    bool      `json:"other,omitempty" yaml:"other,omitempty" toml:"other,omitempty"`
	Domain   string    `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain,omitempty"`
	Match    string    `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Prefill  *bool     `json:"prefill,omitempty" yaml:"prefill,omitempty" toml:"prefill,omitempty"`
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty" toml:"elements,omitempty"`

	NoviceLabel string `json:"novice_label,omitempty" yaml:"novice_label,omitempty" toml:"novice_label,omitempty"`
	ExpertLabel string `json:"expert_label,omitempty" yaml:"expert_label,omitempty" toml:"expert_label,omitempty"`

	Prev      string `json:"prev,omitempty" yaml:"prev,omitempty" toml:"prev,omitempty"`
	PrevLabel string `json:"prev_label,omitempty" yaml:"prev_label,omitempty" toml:"prev_label,omitempty"`
	Next      string `json:"next,omitempty" yaml:"next,omitempty" toml:"next,omitempty"`
	NextLabel string `json:"next_label,omitempty" yaml:"next_label,omitempty" toml:"next_label,omitempty"`
}

// Document is a parsed form description.
type Document struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Elements []Element `json:"elements" yaml:"elements" toml:"elements"`
}

// IsHeading reports whether the input groups nested elements.
func (i Input) IsHeading() bool {
	switch i {
	case InputH1, InputH2, InputH3, InputParagraph:
		return true
	default:
		return false
	}
}

// IsField reports whether the input produces a form widget.
func (i Input) IsField() bool {
	switch i {
	case InputText, InputEmail, InputNID, InputRadio, InputCheckbox,
		InputDropdown, InputSlider, InputSignature:
		return true
	default:
		return false
	}
}

// PrefillEnabled reports whether stored member data should seed the element.
func (e Element) PrefillEnabled() bool {
	return e.Prefill == nil || *e.Prefill
}

// Pattern returns the validation pattern of the element: an explicit Match
// wins, otherwise the pattern implied by the input type.
func (e Element) Pattern() string {
	if e.Match != "" {
		return e.Match
	}
	switch e.Input {
	case InputEmail:
		if domain := strings.TrimSpace(e.Domain); domain != "" {
			return PatternEmailPrefix + quoteDomain(domain)
		}
		return PatternEmail
	case InputNID:
		return PatternNID
	default:
		return ""
	}
}

func quoteDomain(domain string) string {
	return strings.ReplaceAll(strings.ToLower(domain), ".", `\.`)
}

// Walk visits every element depth-first in document order.
func (d Document) Walk(fn func(Element) error) error {
	return walk(d.Elements, fn)
}

func walk(elements []Element, fn func(Element) error) error {
	for _, el := range elements {
		if err := fn(el); err != nil {
			return err
		}
		if len(el.Elements) > 0 {
			if err := walk(el.Elements, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Keys returns the keys of every field element in document order.
func (d Document) Keys() []string {
	var keys []string
	_ = d.Walk(func(el Element) error {
		if el.Input.IsField() && el.Key != "" {
			keys = append(keys, el.Key)
		}
		return nil
	})
	return keys
}

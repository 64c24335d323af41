package openapi

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-memberforms/pkg/kennel"
)

// ErrUnsupportedSchema reports a property that has no form input equivalent.
var ErrUnsupportedSchema = goerr.New("schema has no form input equivalent")

const (
	typeObject  = "object"
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeArray   = "array"
	typeString  = "string"
)

// Vendor extensions read from property schemas.
const (
	ExtOther     = "x-other"
	ExtSignature = "x-signature"
	ExtWidget    = "x-widget"
	ExtDomain    = "x-domain"
	ExtPrefill   = "x-prefill"
	ExtOrder     = "x-order"
)

// Import parses raw and converts the request body of operationID into a form
// description.
func Import(ctx context.Context, raw []byte, operationID string, options ...Option) (kennel.Document, error) {
	ops, err := Operations(ctx, raw, options...)
	if err != nil {
		return kennel.Document{}, err
	}
	op, ok := ops[operationID]
	if !ok {
		return kennel.Document{}, fmt.Errorf("%w: %q (available: %s)", ErrOperationNotFound, operationID, strings.Join(OperationIDs(ops), ", "))
	}
	return ToDocument(op)
}

// ToDocument converts the request body schema of op. Properties become
// inputs in x-order, then name order; nested objects become h2 sections
// whose fields carry dotted keys.
func ToDocument(op Operation) (kennel.Document, error) {
	if op.Body == nil || op.Body.Value == nil {
		return kennel.Document{}, goerr.Wrap(ErrUnsupportedSchema, "operation has no request body", goerr.V("operation", op.ID))
	}
	if typ := firstSchemaType(op.Body.Value.Type); typ != "" && typ != typeObject {
		return kennel.Document{}, goerr.Wrap(ErrUnsupportedSchema, "request body must be an object",
			goerr.V("operation", op.ID), goerr.V("type", typ))
	}

	elements, err := convertObject("", op.Body.Value)
	if err != nil {
		return kennel.Document{}, goerr.Wrap(err, "convert request body", goerr.V("operation", op.ID))
	}
	if op.Summary != "" {
		elements = []kennel.Element{{Input: kennel.InputH1, Label: op.Summary, Caption: op.Description, Elements: elements}}
	}
	return kennel.Document{ID: op.ID, Title: op.Summary, Elements: elements}, nil
}

func convertObject(prefix string, schema *openapi3.Schema) ([]kennel.Element, error) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	var elements []kennel.Element
	for _, name := range propertyOrder(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		el, err := convertProperty(joinKey(prefix, name), name, ref.Value, required[name])
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func convertProperty(key, name string, schema *openapi3.Schema, required bool) (kennel.Element, error) {
	el := kennel.Element{
		Key:      key,
		Label:    schema.Title,
		Caption:  schema.Description,
		Required: required,
	}
	if el.Label == "" {
		el.Label = humanize(name)
	}
	if prefill, ok := schema.Extensions[ExtPrefill].(bool); ok {
		el.Prefill = &prefill
	}
	if flag(schema.Extensions, ExtSignature) {
		el.Input = kennel.InputSignature
		return el, nil
	}

	typ := firstSchemaType(schema.Type)
	switch typ {
	case typeObject:
		children, err := convertObject(key, schema)
		if err != nil {
			return kennel.Element{}, err
		}
		return kennel.Element{Input: kennel.InputH2, Label: el.Label, Caption: el.Caption, Elements: children}, nil
	case typeBoolean:
		el.Input = kennel.InputRadio
		el.Options = []string{"Yes", "No"}
	case typeInteger, typeNumber:
		if widget(schema) == "slider" || isSliderRange(schema) {
			el.Input = kennel.InputSlider
			return el, nil
		}
		el.Input = kennel.InputText
		el.Match = `^-?[0-9]+([.][0-9]+)?$`
		if typ == typeInteger {
			el.Match = `^-?[0-9]+$`
		}
	case typeArray:
		options, ok := enumStrings(schema.Items)
		if !ok {
			return kennel.Element{}, goerr.Wrap(ErrUnsupportedSchema, "arrays need string enum items", goerr.V("key", key))
		}
		el.Input = kennel.InputCheckbox
		el.Options = options
	case typeString, "":
		convertString(&el, schema)
	default:
		return kennel.Element{}, goerr.Wrap(ErrUnsupportedSchema, "unknown schema type", goerr.V("key", key), goerr.V("type", typ))
	}
	return el, nil
}

func convertString(el *kennel.Element, schema *openapi3.Schema) {
	if len(schema.Enum) > 0 {
		for _, value := range schema.Enum {
			el.Options = append(el.Options, fmt.Sprint(value))
		}
		el.Input = kennel.InputDropdown
		if widget(schema) == "radio" {
			el.Input = kennel.InputRadio
			return
		}
		el.Other = flag(schema.Extensions, ExtOther)
		return
	}
	if schema.Format == "email" {
		el.Input = kennel.InputEmail
		el.Domain, _ = schema.Extensions[ExtDomain].(string)
		return
	}
	el.Input = kennel.InputText
	if widget(schema) == "nid" {
		el.Input = kennel.InputNID
	}
	el.Match = schema.Pattern
}

// isSliderRange matches the 1..5 scale sliders submit.
func isSliderRange(schema *openapi3.Schema) bool {
	return schema.Min != nil && schema.Max != nil && *schema.Min == 1 && *schema.Max == kennel.SliderSteps
}

func enumStrings(ref *openapi3.SchemaRef) ([]string, bool) {
	if ref == nil || ref.Value == nil || len(ref.Value.Enum) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(ref.Value.Enum))
	for _, value := range ref.Value.Enum {
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func widget(schema *openapi3.Schema) string {
	value, _ := schema.Extensions[ExtWidget].(string)
	return strings.ToLower(value)
}

func flag(ext map[string]any, name string) bool {
	value, _ := ext[name].(bool)
	return value
}

// propertyOrder sorts by x-order, unordered properties last, ties by name.
func propertyOrder(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	rank := func(name string) float64 {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return math.Inf(1)
		}
		if order, ok := ref.Value.Extensions[ExtOrder].(float64); ok {
			return order
		}
		return math.Inf(1)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// humanize turns "first_name" into "First name".
func humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	if len(words) == 0 {
		return name
	}
	text := strings.ToLower(strings.Join(words, " "))
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

package kennel

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument is returned for blank form files.
	ErrEmptyDocument = errors.New("kennel: document is empty")
	// ErrPathNotAllowed guards LoadFS against names escaping the form directory.
	ErrPathNotAllowed = errors.New("kennel: form name is not allowed")
	// ErrFormNotFound is returned when no file matches the requested form.
	ErrFormNotFound = errors.New("kennel: form not found")
)

// Format names a serialisation of form descriptions.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// formExtensions lists candidate extensions in lookup order.
var formExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// FormatFromName infers the format from a file extension, defaulting to JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Parse decodes a form description. JSON and YAML files may hold either a
// bare list of elements or a document object; TOML files must be a document
// with [[elements]] tables. source is only used for format detection and
// error messages.
func Parse(data []byte, source string) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	var doc Document
	switch FormatFromName(source) {
	case FormatTOML:
		if err := toml.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("kennel: parse %s: %w", source, err)
		}
	case FormatYAML:
		if err := decodeYAML(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("kennel: parse %s: %w", source, err)
		}
	default:
		if err := decodeJSON(trimmed, &doc); err != nil {
			// Extensionless sources may still carry YAML.
			if yamlErr := decodeYAML(trimmed, &doc); yamlErr != nil {
				return Document{}, fmt.Errorf("kennel: parse %s: invalid JSON or YAML: %w", source, err)
			}
		}
	}
	return doc, nil
}

func decodeJSON(data []byte, doc *Document) error {
	if data[0] == '[' {
		return sonic.Unmarshal(data, &doc.Elements)
	}
	return sonic.Unmarshal(data, doc)
}

func decodeYAML(data []byte, doc *Document) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		return node.Content[0].Decode(&doc.Elements)
	}
	return node.Decode(doc)
}

// LoadFile reads and parses a form description from disk. The document ID
// defaults to the file name without extension.
func LoadFile(name string) (Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return Document{}, fmt.Errorf("kennel: read %s: %w", name, err)
	}
	doc, err := Parse(data, name)
	if err != nil {
		return Document{}, err
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return doc, nil
}

// LoadFS resolves a form by name inside fsys (for example "1" matches
// "1.json"). Names must be a single path element.
func LoadFS(fsys fs.FS, name string) (Document, error) {
	clean := strings.TrimSpace(name)
	if !allowedName(clean) {
		return Document{}, fmt.Errorf("%w: %q", ErrPathNotAllowed, name)
	}

	candidates := []string{clean}
	if path.Ext(clean) == "" {
		candidates = candidates[:0]
		for _, ext := range formExtensions {
			candidates = append(candidates, clean+ext)
		}
	}

	for _, candidate := range candidates {
		data, err := fs.ReadFile(fsys, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Document{}, fmt.Errorf("kennel: read %s: %w", candidate, err)
		}
		doc, err := Parse(data, candidate)
		if err != nil {
			return Document{}, err
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(clean, path.Ext(clean))
		}
		return doc, nil
	}
	return Document{}, fmt.Errorf("%w: %q", ErrFormNotFound, name)
}

func allowedName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return fs.ValidPath(name)
}

// Encode serialises doc in the requested format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON, "":
		return sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("kennel: unknown format %q", format)
	}
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-memberforms/pkg/renderers/html"
)

const defaultTimeout = 15 * time.Second

// Settings is the optional TOML settings file. Flags and MEMBERFORMS_*
// environment variables take precedence over it.
type Settings struct {
	Endpoint   string        `toml:"endpoint"`
	PathBase   string        `toml:"path_base"`
	Timeout    string        `toml:"timeout"`
	NestedKeys bool          `toml:"nested_keys"`
	FormsDir   string        `toml:"forms_dir"`
	OutputDir  string        `toml:"output_dir"`
	Theme      ThemeSettings `toml:"theme"`
}

// ThemeSettings declares the theme applied to rendered HTML.
type ThemeSettings struct {
	Name       string                       `toml:"name"`
	Variant    string                       `toml:"variant"`
	AssetsURL  string                       `toml:"assets_url"`
	Stylesheet string                       `toml:"stylesheet"`
	Tokens     map[string]string            `toml:"tokens"`
	Variants   map[string]map[string]string `toml:"variants"`
	Templates  map[string]string            `toml:"templates"`
}

// LoadSettings reads path. An empty path yields zero settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, goerr.Wrap(err, "failed to read settings", goerr.V("path", path))
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, goerr.Wrap(err, "failed to parse settings", goerr.V("path", path))
	}
	if _, err := s.TimeoutDuration(); err != nil {
		return s, err
	}
	return s, nil
}

// TimeoutDuration parses Timeout, defaulting to 15s.
func (s Settings) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(s.Timeout) == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 0, goerr.New("timeout must be a positive duration", goerr.V("timeout", s.Timeout))
	}
	return d, nil
}

// OutputPath places relative output names under OutputDir.
func (s Settings) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) || s.OutputDir == "" {
		return name
	}
	return filepath.Join(s.OutputDir, name)
}

// Manifest converts the theme settings into a go-theme manifest, or nil when
// no theme is configured.
func (t ThemeSettings) Manifest() *theme.Manifest {
	if t.Name == "" && len(t.Tokens) == 0 && t.Stylesheet == "" {
		return nil
	}
	name := t.Name
	if name == "" {
		name = "default"
	}
	m := &theme.Manifest{
		Name:      name,
		Version:   "1.0.0",
		Tokens:    t.Tokens,
		Templates: t.Templates,
		Assets:    theme.Assets{Prefix: t.AssetsURL},
	}
	if t.Stylesheet != "" {
		m.Assets.Files = map[string]string{html.StylesheetAsset: t.Stylesheet}
	}
	if len(t.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(t.Variants))
		for variant, tokens := range t.Variants {
			m.Variants[variant] = theme.Variant{Tokens: tokens}
		}
	}
	return m
}

// RendererConfig resolves the configured theme and variant.
func (t ThemeSettings) RendererConfig() *theme.RendererConfig {
	return html.ThemeFromManifest(t.Manifest(), t.Variant)
}

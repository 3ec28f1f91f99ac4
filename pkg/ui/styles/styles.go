// Package styles holds the terminal styles shared by the homebin commands.
//
// Styles are defined in an embedded YAML file with adaptive colors, so the
// same names render sensibly on light and dark terminals.
package styles

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color definition.
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition. Foreground names a color.
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	MarginLeft int    `yaml:"marginLeft,omitempty"`
}

// Config is the styles file layout.
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

var (
	mu       sync.RWMutex
	registry map[string]lipgloss.Style
)

func init() {
	if err := Reset(); err != nil {
		registry = map[string]lipgloss.Style{}
	}
}

// LoadFromData replaces the registry with the styles in data.
func LoadFromData(data []byte) error {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	styles := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		styles[name] = buildStyle(def, colors)
	}

	mu.Lock()
	registry = styles
	mu.Unlock()
	return nil
}

// Reset reloads the embedded styles.
func Reset() error {
	return LoadFromData(embeddedStyles)
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if def.MarginLeft > 0 {
		style = style.MarginLeft(def.MarginLeft)
	}
	return style
}

// Get returns the named style and whether it exists. Unknown names yield a
// plain style.
func Get(name string) (lipgloss.Style, bool) {
	mu.RLock()
	defer mu.RUnlock()
	style, ok := registry[name]
	if !ok {
		return lipgloss.NewStyle(), false
	}
	return style, true
}

// Names lists the registered style names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// Render renders text with the named style.
func Render(name, text string) string {
	style, _ := Get(name)
	return style.Render(text)
}

func Header(text string) string   { return Render("Header", text) }
func Success(text string) string  { return Render("Success", text) }
func Error(text string) string    { return Render("Error", text) }
func Warning(text string) string  { return Render("Warning", text) }
func Muted(text string) string    { return Render("Muted", text) }
func FilePath(text string) string { return Render("FilePath", text) }

package rules

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/registry"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var static = registry.New[Provider]()

// Register adds a compiled-in provider. Registered providers are consulted
// before any configured rules, in registration order. Registering the same
// name twice panics.
func Register(p Provider) {
	registry.MustRegister(static, p.Name(), p)
}

// Registered returns the compiled-in providers in registration order.
func Registered() []Provider {
	return static.Items()
}

// StaticProvider serves a fixed list of descriptors.
type StaticProvider struct {
	name        string
	descriptors []Descriptor
}

// NewStaticProvider returns a provider for descriptors built in Go.
func NewStaticProvider(name string, descriptors ...Descriptor) *StaticProvider {
	return &StaticProvider{name: name, descriptors: descriptors}
}

func (p *StaticProvider) Name() string { return p.name }

func (p *StaticProvider) Rules() ([]Descriptor, error) { return p.descriptors, nil }

// ConfigProvider reads rules inlined under the "rules" key of the
// configuration file.
type ConfigProvider struct {
	cfg *config.Config
}

// NewConfigProvider returns a provider for the inline rules of cfg.
func NewConfigProvider(cfg *config.Config) *ConfigProvider {
	return &ConfigProvider{cfg: cfg}
}

func (p *ConfigProvider) Name() string { return "config" }

func (p *ConfigProvider) Rules() ([]Descriptor, error) {
	if !p.cfg.Exists("rules") {
		return nil, nil
	}
	var entries []entry
	if err := p.cfg.Unmarshal("rules", &entries); err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderLoad, "failed to decode inline rules")
	}
	return descriptors(entries), nil
}

// FileProvider reads a single YAML or TOML descriptor file.
type FileProvider struct {
	fs   types.FS
	path string
}

// NewFileProvider returns a provider for the descriptor file at path.
func NewFileProvider(fs types.FS, path string) *FileProvider {
	return &FileProvider{fs: fs, path: path}
}

// Name is the file's base name.
func (p *FileProvider) Name() string { return filepath.Base(p.path) }

func (p *FileProvider) Rules() ([]Descriptor, error) {
	data, err := p.fs.ReadFile(p.path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProviderLoad, "failed to read rule file %s", p.path)
	}

	var file struct {
		Rules []entry `yaml:"rules" toml:"rules"`
	}

	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&file)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&file)
		if err != nil && len(bytes.TrimSpace(data)) == 0 {
			err = nil
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProviderLoad, "failed to parse rule file %s", p.path)
	}

	return descriptors(file.Rules), nil
}

// IsRuleFile reports whether name has a descriptor file extension.
func IsRuleFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".toml":
		return true
	}
	return false
}

// DirProviders returns a FileProvider per descriptor file in dir, sorted by
// file name. A missing directory yields no providers.
func DirProviders(fs types.FS, dir string) ([]Provider, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if _, statErr := fs.Stat(dir); statErr != nil {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrProviderLoad, "failed to list rules directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsRuleFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		providers = append(providers, NewFileProvider(fs, filepath.Join(dir, name)))
	}
	return providers, nil
}

// Discover returns every provider in load order: registered providers,
// inline config rules, then descriptor files in rulesDir.
func Discover(fs types.FS, cfg *config.Config, rulesDir string) ([]Provider, error) {
	providers := Registered()
	if cfg != nil {
		providers = append(providers, NewConfigProvider(cfg))
	}
	files, err := DirProviders(fs, rulesDir)
	if err != nil {
		return nil, err
	}
	return append(providers, files...), nil
}

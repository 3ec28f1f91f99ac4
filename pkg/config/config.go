package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Options selects the sources Load layers together.
type Options struct {
	// Defaults is YAML loaded first, usually embedded with go:embed.
	Defaults []byte

	// Files are loaded in order. Missing files are skipped unless Required is set.
	Files []string

	// Required makes a missing file a configuration error.
	Required bool

	// EnvPrefix enables environment overrides, e.g. "MOVE_DOWNLOADS_".
	EnvPrefix string

	// Delimiter separates key path segments. Defaults to ".".
	Delimiter string

	// Overrides are applied last and win over every other source.
	Overrides map[string]interface{}
}

// Config is a layered, read-only view over the loaded sources.
type Config struct {
	k     *koanf.Koanf
	files []string
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load builds a Config from opts. All failures are ErrConfigLoad or
// ErrConfigParse errors and are meant to be fatal at startup.
func Load(opts Options) (*Config, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = "."
	}
	k := koanf.New(delim)
	cfg := &Config{k: k}

	// 1. Embedded defaults
	if len(opts.Defaults) > 0 {
		if err := k.Load(&rawBytesProvider{bytes: opts.Defaults}, yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
		}
	}

	// 2. Config files
	for _, path := range opts.Files {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) && !opts.Required {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config %s", path)
		}

		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		cfg.files = append(cfg.files, path)
	}

	// 3. Environment overrides
	if opts.EnvPrefix != "" {
		prefix := opts.EnvPrefix
		err := k.Load(env.Provider(prefix, delim, func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", delim)
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Fixed overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, delim), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config format: %s", path)
	}
}

// LoadedFiles returns the config files that were found and loaded.
func (c *Config) LoadedFiles() []string {
	return c.files
}

// Koanf exposes the underlying koanf instance.
func (c *Config) Koanf() *koanf.Koanf {
	return c.k
}

// Exists reports whether a key path is set by any source.
func (c *Config) Exists(path string) bool {
	return c.k.Exists(path)
}

// Get returns the value at a dotted key path or def when unset.
func (c *Config) Get(path string, def interface{}) interface{} {
	if !c.k.Exists(path) {
		return def
	}
	return c.k.Get(path)
}

// String returns a string value or def when unset or empty.
func (c *Config) String(path, def string) string {
	if s := c.k.String(path); s != "" {
		return s
	}
	return def
}

// Int returns an int value or def when unset.
func (c *Config) Int(path string, def int) int {
	if !c.k.Exists(path) {
		return def
	}
	return c.k.Int(path)
}

// Bool returns a bool value or def when unset.
func (c *Config) Bool(path string, def bool) bool {
	if !c.k.Exists(path) {
		return def
	}
	return c.k.Bool(path)
}

// StringMap returns the keys below path as strings. Nested maps are skipped.
func (c *Config) StringMap(path string) map[string]string {
	out := make(map[string]string)
	raw, ok := c.k.Get(path).(map[string]interface{})
	if !ok {
		return out
	}
	for key, value := range raw {
		switch v := value.(type) {
		case map[string]interface{}:
			continue
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// Keys returns the sorted child keys below path.
func (c *Config) Keys(path string) []string {
	raw, ok := c.k.Get(path).(map[string]interface{})
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Duration reads a duration given either as a number of seconds (0.5) or
// as a Go duration string ("500ms").
func (c *Config) Duration(path string, def time.Duration) (time.Duration, error) {
	if !c.k.Exists(path) {
		return def, nil
	}
	d, err := toDuration(c.k.Get(path))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid duration for %s", path)
	}
	return d, nil
}

func toDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(v)
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", value, value)
	}
}

// Unmarshal decodes the subtree at path into out using `koanf` struct tags.
func (c *Config) Unmarshal(path string, out interface{}) error {
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				secondsToDurationHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := c.k.UnmarshalWithConf(path, out, unmarshalConf); err != nil {
		return errors.Wrapf(err, errors.ErrConfigInvalid, "failed to decode %q", path)
	}
	return nil
}

// secondsToDurationHookFunc lets numeric seconds decode into time.Duration fields.
func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int64, reflect.Float64:
			return toDuration(data)
		case reflect.String:
			return toDuration(data)
		default:
			return data, nil
		}
	}
}

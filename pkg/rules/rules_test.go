package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/placeholder"
	"github.com/arthur-debert/homebin/pkg/registry"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var globals = map[string]string{"home": "/data"}

func mustCompile(t *testing.T, d Descriptor) *Rule {
	t.Helper()
	r, err := Compile("test", 0, d)
	require.NoError(t, err)
	return r
}

func TestCompile(t *testing.T) {
	t.Run("prefix_anchored", func(t *testing.T) {
		r := mustCompile(t, Descriptor{Regex: `IMG_\d+`, Target: StaticTarget("/x")})
		assert.NotNil(t, r.Match("IMG_042.jpg", nil))
		assert.Nil(t, r.Match("old_IMG_042.jpg", nil))
	})

	t.Run("alternation_stays_anchored", func(t *testing.T) {
		r := mustCompile(t, Descriptor{Regex: `a|b`})
		assert.Nil(t, r.Match("xb", nil))
		assert.NotNil(t, r.Match("b.txt", nil))
	})

	t.Run("default_name", func(t *testing.T) {
		r, err := Compile("photos.yml", 2, Descriptor{Regex: "x"})
		require.NoError(t, err)
		assert.Equal(t, "photos.yml#3", r.Name)
		assert.Equal(t, "photos.yml/photos.yml#3", r.String())
	})

	t.Run("invalid_pattern", func(t *testing.T) {
		_, err := Compile("test", 0, Descriptor{Regex: `IMG_(\d+`})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
	})

	t.Run("missing_regex", func(t *testing.T) {
		_, err := Compile("test", 0, Descriptor{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrRuleInvalid))
	})
}

func TestResolveTarget(t *testing.T) {
	t.Run("static_template", func(t *testing.T) {
		r := mustCompile(t, Descriptor{Regex: `IMG_(\d+)\.jpg`, Target: StaticTarget("{home}/Photos/{re_1}.jpg")})
		mc := r.Match("IMG_042.jpg", globals)
		require.NotNil(t, mc)

		target, ok, err := r.ResolveTarget("/dl/IMG_042.jpg", mc)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "/data/Photos/042.jpg", target)
	})

	t.Run("no_target", func(t *testing.T) {
		r := mustCompile(t, Descriptor{Regex: `.*`})
		_, ok, err := r.ResolveTarget("/dl/a", r.Match("a", nil))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("computed_target_is_expanded", func(t *testing.T) {
		var gotSource string
		r := mustCompile(t, Descriptor{
			Regex: `(\w+)\.pdf`,
			Target: ComputedTarget(func(source string, mc *placeholder.MatchContext) (string, bool, error) {
				gotSource = source
				return "{home}/Docs/" + mc.Groups[1].Value + ".pdf", true, nil
			}),
		})
		target, ok, err := r.ResolveTarget("/dl/invoice.pdf", r.Match("invoice.pdf", globals))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "/data/Docs/invoice.pdf", target)
		assert.Equal(t, "/dl/invoice.pdf", gotSource)
	})

	t.Run("computed_target_declines", func(t *testing.T) {
		r := mustCompile(t, Descriptor{
			Regex: `.*`,
			Target: ComputedTarget(func(string, *placeholder.MatchContext) (string, bool, error) {
				return "", false, nil
			}),
		})
		_, ok, err := r.ResolveTarget("/dl/a", r.Match("a", nil))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown_placeholder", func(t *testing.T) {
		r := mustCompile(t, Descriptor{Regex: `.*`, Target: StaticTarget("{nope}/x")})
		_, _, err := r.ResolveTarget("/dl/a", r.Match("a", nil))
		assert.True(t, errors.IsErrorCode(err, errors.ErrPlaceholder))
	})
}

func TestSpecStrings(t *testing.T) {
	assert.Equal(t, "move", ActionSpec{}.String())
	assert.Equal(t, "copy", BuiltinAction("copy").String())
	assert.Equal(t, "custom", CustomAction(func(context.Context, string, string) error { return nil }).String())
	assert.Equal(t, "", ValidatorSpec{}.String())
	assert.True(t, ValidatorSpec{}.IsZero())
	assert.Equal(t, "notify", BuiltinValidator("notify").String())
	assert.True(t, TargetSpec{}.IsZero())
}

func TestFileProvider(t *testing.T) {
	fs := filesystem.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/rules", 0755))

	t.Run("yaml", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/rules/10-photos.yml", []byte(`
rules:
  - name: photos
    regex: 'IMG_(\d+)\.jpg'
    target: '{home}/Photos/{re_1}.jpg'
  - regex: '.*\.torrent'
    target: '~/Torrents'
    command: 'transmission-remote -a {source}'
    validator: notify
`), 0644))

		got, err := NewFileProvider(fs, "/rules/10-photos.yml").Rules()
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "photos", got[0].Name)
		assert.Equal(t, StaticTarget("{home}/Photos/{re_1}.jpg"), got[0].Target)
		assert.True(t, got[0].Action.IsZero())
		assert.Equal(t, "command", got[1].Action.Name)
		assert.Equal(t, "transmission-remote -a {source}", got[1].Action.Command)
		assert.Equal(t, "notify", got[1].Validator.Name)
	})

	t.Run("toml", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/rules/20-docs.toml", []byte(`
[[rules]]
name = "invoices"
regex = 'invoice-(\d{4})'
target = "{home}/Invoices/{re_1}/{filename}"
action = "copy"
`), 0644))

		got, err := NewFileProvider(fs, "/rules/20-docs.toml").Rules()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "invoices", got[0].Name)
		assert.Equal(t, "copy", got[0].Action.Name)
	})

	t.Run("unknown_field", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/rules/bad.yaml", []byte("rules:\n  - regx: 'a'\n"), 0644))
		_, err := NewFileProvider(fs, "/rules/bad.yaml").Rules()
		assert.True(t, errors.IsErrorCode(err, errors.ErrProviderLoad))
	})

	t.Run("empty_file", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/rules/empty.yml", nil, 0644))
		got, err := NewFileProvider(fs, "/rules/empty.yml").Rules()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDirProviders(t *testing.T) {
	fs := filesystem.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/rules", 0755))
	for _, name := range []string{"b.toml", "a.yml", "notes.txt", ".hidden.yml", "c.yaml"} {
		require.NoError(t, fs.WriteFile(filepath.Join("/rules", name), []byte(""), 0644))
	}

	providers, err := DirProviders(fs, "/rules")
	require.NoError(t, err)

	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"a.yml", "b.toml", "c.yaml"}, names)

	t.Run("missing_dir", func(t *testing.T) {
		providers, err := DirProviders(fs, "/nope")
		require.NoError(t, err)
		assert.Empty(t, providers)
	})
}

func TestConfigProvider(t *testing.T) {
	cfg, err := config.Load(config.Options{Defaults: []byte(`
rules:
  - name: inline
    regex: 'inline-.*'
    target: '/tmp/inline'
    validator_command: 'test -s {target}'
`)})
	require.NoError(t, err)

	got, err := NewConfigProvider(cfg).Rules()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inline", got[0].Name)
	assert.Equal(t, ValidatorSpec{Name: "command", Command: "test -s {target}"}, got[0].Validator)

	t.Run("no_rules_key", func(t *testing.T) {
		empty, err := config.Load(config.Options{})
		require.NoError(t, err)
		got, err := NewConfigProvider(empty).Rules()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Rules() ([]Descriptor, error) {
	return nil, errors.New(errors.ErrProviderLoad, "boom")
}

func TestLoad(t *testing.T) {
	good := NewStaticProvider("good",
		Descriptor{Name: "first", Regex: "a", Target: StaticTarget("/a")},
		Descriptor{Name: "second", Regex: "b", Target: StaticTarget("/b")},
	)
	bad := NewStaticProvider("bad",
		Descriptor{Name: "ok", Regex: "c", Target: StaticTarget("/c")},
		Descriptor{Name: "broken", Regex: "(", Target: StaticTarget("/d")},
	)
	late := NewStaticProvider("late", Descriptor{Name: "third", Regex: "e"})

	rs := Load([]Provider{good, bad, failingProvider{}, late})

	var names []string
	for _, r := range rs.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names, "invalid providers are skipped whole")
	assert.Equal(t, 3, rs.Len())

	require.Len(t, rs.Skipped(), 2)
	assert.Equal(t, "bad", rs.Skipped()[0].Provider)
	assert.True(t, errors.IsErrorCode(rs.Skipped()[0].Err, errors.ErrPatternInvalid))
	assert.Equal(t, "failing", rs.Skipped()[1].Provider)
}

func TestDiscover(t *testing.T) {
	saved := static
	static = registry.New[Provider]()
	t.Cleanup(func() { static = saved })

	builtin := NewStaticProvider("test-builtin", Descriptor{Regex: "x"})
	Register(builtin)

	assert.Panics(t, func() { Register(builtin) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.yml"), []byte("rules: []\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte(""), 0644))

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	var osFS types.FS = filesystem.NewOS()
	providers, err := Discover(osFS, cfg, dir)
	require.NoError(t, err)

	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"test-builtin", "config", "a.toml", "z.yml"}, names)
}

package rules

import (
	"context"

	"github.com/arthur-debert/homebin/pkg/placeholder"
)

// TargetFunc computes the destination for a matched file. Returning
// ok=false means the rule has no target and is treated as non-matching.
// The returned path is still expanded as a template.
type TargetFunc func(source string, mc *placeholder.MatchContext) (target string, ok bool, err error)

// ActionFunc replaces the default move entirely.
type ActionFunc func(ctx context.Context, source, target string) error

// ValidatorFunc runs after the action with the original source and the
// final target.
type ValidatorFunc func(ctx context.Context, source, target string) error

// TargetSpec is either a static template or a computed target.
type TargetSpec struct {
	Template string
	Func     TargetFunc
}

// StaticTarget returns a TargetSpec rendering template.
func StaticTarget(template string) TargetSpec { return TargetSpec{Template: template} }

// ComputedTarget returns a TargetSpec calling fn.
func ComputedTarget(fn TargetFunc) TargetSpec { return TargetSpec{Func: fn} }

// IsZero reports whether no target was configured.
func (t TargetSpec) IsZero() bool { return t.Template == "" && t.Func == nil }

// ActionSpec names a builtin action or carries a custom function. Command
// is the template used by the builtin "command" action.
type ActionSpec struct {
	Name    string
	Command string
	Func    ActionFunc
}

// BuiltinAction returns an ActionSpec for a named builtin.
func BuiltinAction(name string) ActionSpec { return ActionSpec{Name: name} }

// CustomAction returns an ActionSpec calling fn.
func CustomAction(fn ActionFunc) ActionSpec { return ActionSpec{Func: fn} }

// IsZero reports whether the default action applies.
func (a ActionSpec) IsZero() bool { return a.Name == "" && a.Func == nil }

// String returns the builtin name or "custom".
func (a ActionSpec) String() string {
	switch {
	case a.Func != nil:
		return "custom"
	case a.Name == "":
		return "move"
	default:
		return a.Name
	}
}

// ValidatorSpec names a builtin validator or carries a custom function.
type ValidatorSpec struct {
	Name    string
	Command string
	Func    ValidatorFunc
}

// BuiltinValidator returns a ValidatorSpec for a named builtin.
func BuiltinValidator(name string) ValidatorSpec { return ValidatorSpec{Name: name} }

// CustomValidator returns a ValidatorSpec calling fn.
func CustomValidator(fn ValidatorFunc) ValidatorSpec { return ValidatorSpec{Func: fn} }

// IsZero reports whether no validator was configured.
func (v ValidatorSpec) IsZero() bool { return v.Name == "" && v.Func == nil }

// String returns the builtin name, "custom" or "" when unset.
func (v ValidatorSpec) String() string {
	if v.Func != nil {
		return "custom"
	}
	return v.Name
}

// Descriptor is an uncompiled rule as returned by a Provider.
type Descriptor struct {
	Name      string
	Regex     string
	Target    TargetSpec
	Action    ActionSpec
	Validator ValidatorSpec
}

// Provider yields rule descriptors. Providers are loaded once at startup.
type Provider interface {
	Name() string
	Rules() ([]Descriptor, error)
}

// entry is the serialised form of a descriptor in config and rule files.
type entry struct {
	Name             string `yaml:"name" toml:"name" koanf:"name"`
	Regex            string `yaml:"regex" toml:"regex" koanf:"regex"`
	Target           string `yaml:"target" toml:"target" koanf:"target"`
	Action           string `yaml:"action" toml:"action" koanf:"action"`
	Command          string `yaml:"command" toml:"command" koanf:"command"`
	Validator        string `yaml:"validator" toml:"validator" koanf:"validator"`
	ValidatorCommand string `yaml:"validator_command" toml:"validator_command" koanf:"validator_command"`
}

func (e entry) descriptor() Descriptor {
	d := Descriptor{
		Name:      e.Name,
		Regex:     e.Regex,
		Target:    StaticTarget(e.Target),
		Action:    ActionSpec{Name: e.Action, Command: e.Command},
		Validator: ValidatorSpec{Name: e.Validator, Command: e.ValidatorCommand},
	}
	if d.Action.Name == "" && e.Command != "" {
		d.Action.Name = "command"
	}
	if d.Validator.Name == "" && e.ValidatorCommand != "" {
		d.Validator.Name = "command"
	}
	return d
}

func descriptors(entries []entry) []Descriptor {
	out := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.descriptor())
	}
	return out
}

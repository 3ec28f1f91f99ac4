package rules

import (
	"fmt"
	"regexp"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/placeholder"
)

// Rule is a compiled descriptor. Rules are immutable once loaded.
type Rule struct {
	Name      string
	Provider  string
	Regex     string
	Pattern   *regexp.Regexp
	Target    TargetSpec
	Action    ActionSpec
	Validator ValidatorSpec
}

// Compile validates d and compiles its pattern anchored at the start of the
// file name. An invalid pattern is an ErrPatternInvalid error.
func Compile(provider string, index int, d Descriptor) (*Rule, error) {
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("%s#%d", provider, index+1)
	}

	if d.Regex == "" {
		return nil, errors.Newf(errors.ErrRuleInvalid, "rule %s has no regex", name).
			WithDetail("provider", provider)
	}

	pattern, err := regexp.Compile("^(?:" + d.Regex + ")")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "rule %s has an invalid regex %q", name, d.Regex)
	}

	return &Rule{
		Name:      name,
		Provider:  provider,
		Regex:     d.Regex,
		Pattern:   pattern,
		Target:    d.Target,
		Action:    d.Action,
		Validator: d.Validator,
	}, nil
}

// Match matches the rule against a base file name and returns the match
// context, or nil when the name does not match.
func (r *Rule) Match(filename string, globals map[string]string) *placeholder.MatchContext {
	loc := r.Pattern.FindStringSubmatchIndex(filename)
	return placeholder.NewMatchContext(r.Pattern, filename, loc, globals)
}

// ResolveTarget computes and expands the rule's target for a match. It
// returns ok=false when the rule yields no target.
func (r *Rule) ResolveTarget(source string, mc *placeholder.MatchContext) (target string, ok bool, err error) {
	template := r.Target.Template
	if r.Target.Func != nil {
		template, ok, err = r.Target.Func(source, mc)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
	}
	if template == "" {
		return "", false, nil
	}

	expanded, err := placeholder.Expand(template, mc)
	if err != nil {
		return "", false, err
	}
	target, err = placeholder.ResolvePath(expanded)
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}

// String describes the rule for logs and listings.
func (r *Rule) String() string {
	return fmt.Sprintf("%s/%s", r.Provider, r.Name)
}

package rules

import (
	"github.com/arthur-debert/homebin/pkg/logging"
)

// Skipped records a provider whose rules were not loaded.
type Skipped struct {
	Provider string
	Err      error
}

// RuleSet is the ordered, read-only list of loaded rules.
type RuleSet struct {
	rules   []*Rule
	skipped []Skipped
}

// Load compiles the descriptors of every provider in order. A provider that
// fails to load, or that carries an invalid rule, is skipped as a whole and
// reported through Skipped; Load itself does not fail.
func Load(providers []Provider) *RuleSet {
	logger := logging.GetLogger("rules.loader")
	rs := &RuleSet{}

	for _, p := range providers {
		compiled, err := compileProvider(p)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("provider", p.Name()).
				Msg("Skipping rule provider")
			rs.skipped = append(rs.skipped, Skipped{Provider: p.Name(), Err: err})
			continue
		}
		logger.Debug().
			Str("provider", p.Name()).
			Int("ruleCount", len(compiled)).
			Msg("Loaded rule provider")
		rs.rules = append(rs.rules, compiled...)
	}

	return rs
}

func compileProvider(p Provider) ([]*Rule, error) {
	descriptors, err := p.Rules()
	if err != nil {
		return nil, err
	}
	compiled := make([]*Rule, 0, len(descriptors))
	for i, d := range descriptors {
		r, err := Compile(p.Name(), i, d)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, r)
	}
	return compiled, nil
}

// NewRuleSet builds a RuleSet from already compiled rules.
func NewRuleSet(rules ...*Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns the rules in match order.
func (rs *RuleSet) Rules() []*Rule {
	return rs.rules
}

// Len returns the number of loaded rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Skipped returns the providers that were not loaded.
func (rs *RuleSet) Skipped() []Skipped {
	return rs.skipped
}

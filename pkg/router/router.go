// Package router is the rule matching pipeline of move-downloads: it finds
// the first rule producing a target for a file, runs the rule's action and
// validator, and records the result in the recent-files index.
package router

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/arthur-debert/homebin/pkg/actions"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/notify"
	"github.com/arthur-debert/homebin/pkg/placeholder"
	"github.com/arthur-debert/homebin/pkg/recent"
	"github.com/arthur-debert/homebin/pkg/rules"
	"github.com/rs/zerolog"
)

// Match is a planned routing decision.
type Match struct {
	Rule   *rules.Rule
	Source string
	Target string
	Values map[string]string
}

// Router dispatches files to rules. Dispatches are serialized.
type Router struct {
	rules    *rules.RuleSet
	globals  map[string]string
	executor *actions.Executor
	recent   *recent.Index
	notifier notify.Notifier
	logger   zerolog.Logger

	mu sync.Mutex
}

// New returns a Router. globals are the configured placeholders.
func New(rs *rules.RuleSet, globals map[string]string, executor *actions.Executor, index *recent.Index, notifier notify.Notifier) *Router {
	return &Router{
		rules:    rs,
		globals:  globals,
		executor: executor,
		recent:   index,
		notifier: notifier,
		logger:   logging.GetLogger("router"),
	}
}

// Plan finds the rule and target for path without side effects. It returns
// nil when no rule produces a target.
func (r *Router) Plan(path string) (m *Match, err error) {
	defer r.recoverInto(path, &err)
	return r.plan(path)
}

func (r *Router) plan(path string) (*Match, error) {
	source, err := placeholder.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	filename := filepath.Base(source)

	for _, rule := range r.rules.Rules() {
		mc := rule.Match(filename, r.globals)
		if mc == nil {
			continue
		}
		target, ok, err := rule.ResolveTarget(source, mc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "rule %s", rule)
		}
		if !ok {
			r.logger.Trace().Str("rule", rule.String()).Str("file", filename).Msg("Rule matched without target")
			continue
		}
		return &Match{Rule: rule, Source: source, Target: target, Values: mc.Values()}, nil
	}
	return nil, nil
}

// MatchAndDispatch routes one file. It reports whether a rule handled it.
func (r *Router) MatchAndDispatch(ctx context.Context, path string) (bool, error) {
	m, err := r.Dispatch(ctx, path)
	return err == nil && m != nil, err
}

// Dispatch routes one file and returns the rule that handled it, with
// Target set to the final destination, or nil when no rule matched.
// Failures, including panics in rule callbacks, are logged, reported to the
// notifier and returned together with the match that failed; the file
// stays where it was unless the action itself moved it.
func (r *Router) Dispatch(ctx context.Context, path string) (m *Match, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer logging.LogOperationStart(r.logger, "dispatch "+filepath.Base(path))()

	defer func() {
		if err != nil {
			r.report(ctx, path, err)
		}
	}()
	defer r.recoverInto(path, &err)

	m, err = r.plan(path)
	if err != nil || m == nil {
		if m == nil && err == nil {
			r.logger.Debug().Str("file", filepath.Base(path)).Msg("No rule matched")
		}
		return nil, err
	}

	r.logger.Info().
		Str("file", filepath.Base(m.Source)).
		Str("rule", m.Rule.String()).
		Str("action", m.Rule.Action.String()).
		Str("target", m.Target).
		Msg("Dispatching file")

	job := actions.Job{Source: m.Source, Target: m.Target, Values: m.Values}
	final, err := r.executor.Execute(ctx, m.Rule.Action, job)
	if err != nil {
		return m, err
	}
	m.Target = final
	job.Target = final

	if err := r.executor.Validate(ctx, m.Rule.Validator, job); err != nil {
		return m, err
	}

	if err := r.recent.Register(filepath.Base(m.Source), final); err != nil {
		r.logger.Warn().Err(err).Str("target", final).Msg("Failed to update recent files")
	}
	return m, nil
}

func (r *Router) recoverInto(path string, err *error) {
	if p := recover(); p != nil {
		r.logger.Error().
			Str("file", filepath.Base(path)).
			Str("stack", string(debug.Stack())).
			Msgf("Panic while routing: %v", p)
		*err = errors.Newf(errors.ErrInternal, "panic while routing %s: %v", filepath.Base(path), p)
	}
}

func (r *Router) report(ctx context.Context, path string, err error) {
	filename := filepath.Base(path)
	r.logger.Error().Err(err).Str("file", filename).Msg("Failed to process file")
	notify.Info(ctx, r.notifier, "Exception occurred", filename, fmt.Sprint(err))
}

package actions

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/notify"
	"github.com/arthur-debert/homebin/pkg/registry"
	"github.com/arthur-debert/homebin/pkg/rules"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/rs/zerolog"
)

// Job is one action invocation.
type Job struct {
	Source string
	Target string
	// Values are the placeholders of the match, available to command
	// templates next to {source} and {target}.
	Values map[string]string
}

type actionFunc func(ctx context.Context, spec rules.ActionSpec, job Job) (string, error)

type validatorFunc func(ctx context.Context, spec rules.ValidatorSpec, job Job) error

// Executor runs actions and validators.
type Executor struct {
	fs         types.FS
	runner     command.Runner
	notifier   notify.Notifier
	actions    registry.Registry[actionFunc]
	validators registry.Registry[validatorFunc]
	logger     zerolog.Logger
}

// NewExecutor returns an Executor with the builtin actions and validators.
func NewExecutor(fs types.FS, runner command.Runner, notifier notify.Notifier) *Executor {
	e := &Executor{
		fs:         fs,
		runner:     runner,
		notifier:   notifier,
		actions:    registry.New[actionFunc](),
		validators: registry.New[validatorFunc](),
		logger:     logging.GetLogger("actions"),
	}

	registry.MustRegister(e.actions, "move", e.move)
	registry.MustRegister(e.actions, "copy", e.copy)
	registry.MustRegister(e.actions, "symlink", e.symlink)
	registry.MustRegister(e.actions, "command", e.command)
	registry.MustRegister(e.actions, "none", none)

	registry.MustRegister(e.validators, "notify", e.notifyValidator)
	registry.MustRegister(e.validators, "exists", e.existsValidator)
	registry.MustRegister(e.validators, "command", e.commandValidator)

	return e
}

// RegisterAction makes fn available to rules under name.
func (e *Executor) RegisterAction(name string, fn rules.ActionFunc) error {
	return e.actions.Register(name, func(ctx context.Context, _ rules.ActionSpec, job Job) (string, error) {
		return job.Target, fn(ctx, job.Source, job.Target)
	})
}

// RegisterValidator makes fn available to rules under name.
func (e *Executor) RegisterValidator(name string, fn rules.ValidatorFunc) error {
	return e.validators.Register(name, func(ctx context.Context, _ rules.ValidatorSpec, job Job) error {
		return fn(ctx, job.Source, job.Target)
	})
}

// Actions lists the available action names.
func (e *Executor) Actions() []string { return e.actions.List() }

// Validators lists the available validator names.
func (e *Executor) Validators() []string { return e.validators.List() }

// Execute runs the action described by spec and returns the final
// destination, which differs from the target when the file was moved into
// an existing directory. Failures are ErrActionExecute errors.
func (e *Executor) Execute(ctx context.Context, spec rules.ActionSpec, job Job) (string, error) {
	name := spec.String()
	e.logger.Debug().
		Str("action", name).
		Str("source", job.Source).
		Str("target", job.Target).
		Msg("Executing action")

	var (
		final string
		err   error
	)
	if spec.Func != nil {
		final, err = job.Target, spec.Func(ctx, job.Source, job.Target)
	} else {
		fn, lookupErr := e.actions.Get(name)
		if lookupErr != nil {
			return "", errors.Wrapf(lookupErr, errors.ErrActionExecute, "unknown action %q", name)
		}
		final, err = fn(ctx, spec, job)
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrActionExecute, "%s failed for %s", name, filepath.Base(job.Source))
	}
	return final, nil
}

// Validate runs the validator described by spec. A zero spec is a no-op.
// Failures are ErrActionExecute errors.
func (e *Executor) Validate(ctx context.Context, spec rules.ValidatorSpec, job Job) error {
	if spec.IsZero() {
		return nil
	}

	var err error
	if spec.Func != nil {
		err = spec.Func(ctx, job.Source, job.Target)
	} else {
		fn, lookupErr := e.validators.Get(spec.Name)
		if lookupErr != nil {
			return errors.Wrapf(lookupErr, errors.ErrActionExecute, "unknown validator %q", spec.Name)
		}
		err = fn(ctx, spec, job)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrActionExecute, "validator %s failed for %s", spec.String(), filepath.Base(job.Source))
	}
	return nil
}

func none(_ context.Context, _ rules.ActionSpec, job Job) (string, error) {
	return job.Target, nil
}

package actions

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/notify"
	"github.com/arthur-debert/homebin/pkg/placeholder"
	"github.com/arthur-debert/homebin/pkg/rules"
)

func (e *Executor) move(ctx context.Context, _ rules.ActionSpec, job Job) (string, error) {
	target, err := e.prepareTarget(job.Source, job.Target)
	if err != nil {
		return "", err
	}

	name := filepath.Base(job.Source)
	notify.Info(ctx, e.notifier, "Moving file", name, fmt.Sprintf("%s -> %s", name, target))

	err = e.fs.Rename(job.Source, target)
	if err == nil {
		return target, nil
	}
	if !stderrors.Is(err, syscall.EXDEV) {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to move %s to %s", job.Source, target)
	}

	e.logger.Debug().
		Str("source", job.Source).
		Str("target", target).
		Msg("Cross-device move, copying instead")

	if err := e.copyFile(job.Source, target); err != nil {
		return "", err
	}
	if err := e.fs.Remove(job.Source); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "copied to %s but failed to remove %s", target, job.Source)
	}
	return target, nil
}

func (e *Executor) copy(ctx context.Context, _ rules.ActionSpec, job Job) (string, error) {
	target, err := e.prepareTarget(job.Source, job.Target)
	if err != nil {
		return "", err
	}

	name := filepath.Base(job.Source)
	notify.Info(ctx, e.notifier, "Copying file", name, fmt.Sprintf("%s -> %s", name, target))

	if err := e.copyFile(job.Source, target); err != nil {
		return "", err
	}
	return target, nil
}

func (e *Executor) symlink(ctx context.Context, _ rules.ActionSpec, job Job) (string, error) {
	target, err := e.prepareTarget(job.Source, job.Target)
	if err != nil {
		return "", err
	}

	name := filepath.Base(job.Source)
	notify.Info(ctx, e.notifier, "Linking file", name, fmt.Sprintf("%s -> %s", target, job.Source))

	if _, err := e.fs.Lstat(target); err == nil {
		if err := e.fs.Remove(target); err != nil {
			return "", errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to replace %s", target)
		}
	}
	if err := e.fs.Symlink(job.Source, target); err != nil {
		return "", errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", target)
	}
	return target, nil
}

func (e *Executor) command(ctx context.Context, spec rules.ActionSpec, job Job) (string, error) {
	if spec.Command == "" {
		return "", errors.New(errors.ErrRuleInvalid, "command action requires a command")
	}
	if err := e.runTemplate(ctx, spec.Command, job); err != nil {
		return "", err
	}
	return job.Target, nil
}

func (e *Executor) notifyValidator(ctx context.Context, _ rules.ValidatorSpec, job Job) error {
	name := filepath.Base(job.Source)
	notify.Info(ctx, e.notifier, "Processed file", name, job.Target)
	return nil
}

func (e *Executor) existsValidator(_ context.Context, _ rules.ValidatorSpec, job Job) error {
	if _, err := e.fs.Stat(job.Target); err != nil {
		return errors.Wrapf(err, errors.ErrValidation, "target %s does not exist", job.Target)
	}
	return nil
}

func (e *Executor) commandValidator(ctx context.Context, spec rules.ValidatorSpec, job Job) error {
	if spec.Command == "" {
		return errors.New(errors.ErrRuleInvalid, "command validator requires a command")
	}
	if err := e.runTemplate(ctx, spec.Command, job); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "validation command failed")
	}
	return nil
}

func (e *Executor) runTemplate(ctx context.Context, template string, job Job) error {
	values := make(map[string]string, len(job.Values)+2)
	for k, v := range job.Values {
		values[k] = v
	}
	values["source"] = job.Source
	values["target"] = job.Target

	script, err := placeholder.ExpandMap(template, values)
	if err != nil {
		return err
	}

	notify.Info(ctx, e.notifier, "Running command", filepath.Base(job.Source), script)
	res, err := e.runner.Run(ctx, command.Shell(script))
	if res.Stdout != "" {
		e.logger.Debug().Str("output", res.Stdout).Msg("Command stdout")
	}
	return err
}

// prepareTarget creates the target's parent directories and resolves a
// target naming an existing directory to a path inside it.
func (e *Executor) prepareTarget(source, target string) (string, error) {
	if info, err := e.fs.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, filepath.Base(source)), nil
	}
	if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
	}
	return target, nil
}

// copyFile copies source into a temporary file next to target and renames
// it into place, so target never holds a partial copy.
func (e *Executor) copyFile(source, target string) error {
	info, err := e.fs.Stat(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", source)
	}

	tmp := filepath.Join(filepath.Dir(target), fmt.Sprintf(".%s.%d.tmp", filepath.Base(target), os.Getpid()))
	if err := e.writeCopy(source, tmp, info.Mode().Perm()); err != nil {
		_ = e.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to copy %s", source)
	}
	if err := e.fs.Rename(tmp, target); err != nil {
		_ = e.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to rename copy into %s", target)
	}
	return nil
}

func (e *Executor) writeCopy(source, dest string, perm os.FileMode) error {
	in, err := e.fs.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := e.fs.Create(dest, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

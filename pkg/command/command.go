package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

// Command describes a process to run.
type Command struct {
	Name string
	Args []string
	Dir  string

	// Env is added on top of the current environment.
	Env map[string]string

	// Stdin, Stdout and Stderr are attached when set. Unset streams are
	// captured into the Result.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Shell returns a Command running script with sh -c.
func Shell(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds captured output and the exit status.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs commands. A non-zero exit is returned as an ErrCommand error
// together with the Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	Start(ctx context.Context, cmd Command) (Process, error)
}

// Process is a started command.
type Process interface {
	Pid() int
	Wait() (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() *ExecRunner {
	return &ExecRunner{logger: logging.GetLogger("command")}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	p, err := r.Start(ctx, c)
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	return p.Wait()
}

func (r *ExecRunner) Start(ctx context.Context, c Command) (Process, error) {
	if c.Name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "command requires a name")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(c.Env)...)
	}

	p := &execProcess{cmd: cmd, command: c, logger: r.logger}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = &p.stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = &p.stderr
	}

	logging.LogCommand(r.logger, c.Name, c.Args, c.Dir)

	if err := cmd.Start(); err != nil {
		return nil, commandError(err, fmt.Sprintf("failed to start %s", c.Name), -1, "")
	}
	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	command Command
	logger  zerolog.Logger
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() (Result, error) {
	err := p.cmd.Wait()
	result := Result{
		Stdout:   p.stdout.String(),
		Stderr:   p.stderr.String(),
		ExitCode: p.cmd.ProcessState.ExitCode(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		result.ExitCode = -1
	}

	p.logger.Debug().
		Err(err).
		Str("command", p.command.Name).
		Int("exitCode", result.ExitCode).
		Str("stderr", result.Stderr).
		Msg("Command failed")

	return result, commandError(err, fmt.Sprintf("command failed: %s", p.command), result.ExitCode, result.Stderr)
}

func commandError(err error, msg string, exitCode int, stderr string) error {
	e := errors.New(errors.ErrCommand, msg).
		WithDetail("exit_code", exitCode)
	if stderr = strings.TrimSpace(stderr); stderr != "" {
		e.WithDetail("stderr", stderr)
	}
	e.Wrapped = err
	return e
}

// ExitCode returns the exit code recorded anywhere in err's chain: 0 for a
// nil error and -1 when none was recorded.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	for err != nil {
		var hbErr *errors.HomebinError
		if !stderrors.As(err, &hbErr) {
			break
		}
		if code, ok := hbErr.Details["exit_code"].(int); ok {
			return code
		}
		err = hbErr.Wrapped
	}
	return -1
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}

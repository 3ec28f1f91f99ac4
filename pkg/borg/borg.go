// Package borg runs borg backup commands against named repositories whose
// location and credentials live in a JSON config file.
package borg

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	DefaultConfigFile = "/etc/borg-helper.json"
	DefaultBorgBinary = "/usr/local/bin/borg"
)

// Repo is one configured repository. Empty fields are not exported to borg.
type Repo struct {
	Repo       string `koanf:"repo"`
	Passphrase string `koanf:"passphrase"`
	SSHKey     string `koanf:"ssh_key"`
}

// Env returns the borg environment variables for the repo.
func (r Repo) Env() map[string]string {
	env := map[string]string{}
	if r.Repo != "" {
		env["BORG_REPO"] = r.Repo
	}
	if r.Passphrase != "" {
		env["BORG_PASSPHRASE"] = r.Passphrase
	}
	if r.SSHKey != "" {
		env["BORG_RSH"] = fmt.Sprintf("ssh -i '%s'", r.SSHKey)
	}
	return env
}

// LoadRepos reads the repository map from path.
func LoadRepos(path string) (map[string]Repo, error) {
	cfg, err := config.Load(config.Options{
		Files:    []string{path},
		Required: true,
		// repo names may contain dots
		Delimiter: "/",
	})
	if err != nil {
		return nil, err
	}

	repos := map[string]Repo{}
	if err := cfg.Unmarshal("", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Helper runs borg for configured repositories.
type Helper struct {
	repos  map[string]Repo
	binary string
	runner command.Runner
	logger zerolog.Logger
}

// New returns a Helper. An empty binary uses DefaultBorgBinary.
func New(repos map[string]Repo, binary string, runner command.Runner) *Helper {
	if binary == "" {
		binary = DefaultBorgBinary
	}
	return &Helper{
		repos:  repos,
		binary: binary,
		runner: runner,
		logger: logging.GetLogger("borg"),
	}
}

// Names returns the repository names in sorted order.
func (h *Helper) Names() []string {
	names := make([]string, 0, len(h.repos))
	for name := range h.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named repository.
func (h *Helper) Lookup(name string) (Repo, error) {
	repo, ok := h.repos[name]
	if !ok {
		return Repo{}, errors.Newf(errors.ErrNotFound, "Invalid repo name: %s", name).
			WithDetail("repo", name)
	}
	return repo, nil
}

// List writes the available repositories to w.
func (h *Helper) List(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Available repos:"); err != nil {
		return err
	}
	for _, name := range h.Names() {
		if _, err := fmt.Fprintf(w, "  %s (%s)\n", name, h.repos[name].Repo); err != nil {
			return err
		}
	}
	return nil
}

// Streams are attached to the borg process.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run runs borg with args against the named repository and returns borg's
// exit code. The error is nil when borg ran, whatever its exit code.
func (h *Helper) Run(ctx context.Context, name string, args []string, streams Streams) (int, error) {
	repo, err := h.Lookup(name)
	if err != nil {
		return 1, err
	}

	h.logger.Debug().
		Str("repo", name).
		Strs("args", args).
		Msg("Running borg")

	_, err = h.runner.Run(ctx, command.Command{
		Name:   h.binary,
		Args:   args,
		Env:    repo.Env(),
		Stdin:  streams.Stdin,
		Stdout: streams.Stdout,
		Stderr: streams.Stderr,
	})
	code := command.ExitCode(err)
	if code < 0 {
		return 1, err
	}
	return code, nil
}

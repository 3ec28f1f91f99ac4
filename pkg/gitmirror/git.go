package gitmirror

import (
	"context"
	"io"
	"strings"

	"github.com/arthur-debert/homebin/pkg/command"
)

// Git is the subset of git the mirror needs.
type Git interface {
	RemoteURL(ctx context.Context, repo string) (string, error)
	SetRemoteURL(ctx context.Context, repo, url string) error
	Clone(ctx context.Context, url, repo string) error
	Pull(ctx context.Context, repo string) error
}

// ExecGit runs the git binary. Clone and pull output goes to Out.
type ExecGit struct {
	runner command.Runner
	out    io.Writer
}

// NewExecGit returns a Git backed by runner. A nil out discards clone and
// pull output.
func NewExecGit(runner command.Runner, out io.Writer) *ExecGit {
	if out == nil {
		out = io.Discard
	}
	return &ExecGit{runner: runner, out: out}
}

func (g *ExecGit) RemoteURL(ctx context.Context, repo string) (string, error) {
	res, err := g.runner.Run(ctx, command.Command{
		Name: "git",
		Args: []string{"-C", repo, "remote", "get-url", "origin"},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (g *ExecGit) SetRemoteURL(ctx context.Context, repo, url string) error {
	_, err := g.runner.Run(ctx, command.Command{
		Name: "git",
		Args: []string{"-C", repo, "remote", "set-url", "origin", url},
	})
	return err
}

func (g *ExecGit) Clone(ctx context.Context, url, repo string) error {
	_, err := g.runner.Run(ctx, command.Command{
		Name:   "git",
		Args:   []string{"clone", url, repo},
		Stdout: g.out,
		Stderr: g.out,
	})
	return err
}

func (g *ExecGit) Pull(ctx context.Context, repo string) error {
	_, err := g.runner.Run(ctx, command.Command{
		Name:   "git",
		Args:   []string{"-C", repo, "pull"},
		Stdout: g.out,
		Stderr: g.out,
	})
	return err
}

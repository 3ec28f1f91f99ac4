package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/arthur-debert/homebin/pkg/command"
)

// FakeRunner is a command.Runner that records every command. RunFunc, when
// set, decides the result; otherwise commands succeed with empty output.
type FakeRunner struct {
	RunFunc func(cmd command.Command) (command.Result, error)

	mu    sync.Mutex
	calls []command.Command
}

func (f *FakeRunner) Run(ctx context.Context, cmd command.Command) (command.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.RunFunc == nil {
		return command.Result{}, nil
	}
	res, err := f.RunFunc(cmd)
	if cmd.Stdout != nil && res.Stdout != "" {
		_, _ = io.WriteString(cmd.Stdout, res.Stdout)
	}
	return res, err
}

func (f *FakeRunner) Start(ctx context.Context, cmd command.Command) (command.Process, error) {
	res, err := f.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &fakeProcess{pid: 4242, result: res}, nil
}

// Calls returns the commands run so far.
func (f *FakeRunner) Calls() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]command.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines renders the recorded commands as strings.
func (f *FakeRunner) Lines() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

type fakeProcess struct {
	pid    int
	result command.Result
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Wait() (command.Result, error) { return p.result, nil }

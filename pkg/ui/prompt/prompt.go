// Package prompt asks yes/no questions on the console.
package prompt

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
)

// Confirmer asks the user to confirm something.
type Confirmer interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// Prompter reads answers from an input stream.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// New returns a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Console returns a Prompter on stdin and stdout.
func Console() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// AssumeYes makes every question answer itself with yes.
func (p *Prompter) AssumeYes(yes bool) *Prompter {
	p.assumeYes = yes
	return p
}

// Confirm prints question followed by [Y/n] or [y/N] and reads one line.
// An empty answer takes the default. With a yes default anything starting
// with "n" declines; with a no default only "y" or "yes" accepts.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	_, _ = fmt.Fprintf(p.out, "%s %s ", question, hint)

	if p.assumeYes {
		_, _ = fmt.Fprintln(p.out, "y")
		return true, nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(stderrors.Is(err, io.EOF) && line != "") {
		return false, errors.Wrap(err, errors.ErrInvalidInput, "failed to read user input")
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return defaultYes, nil
	}
	if defaultYes {
		return !strings.HasPrefix(answer, "n"), nil
	}
	return answer == "y" || answer == "yes", nil
}

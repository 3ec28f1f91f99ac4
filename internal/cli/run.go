package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/homebin/pkg/ui/styles"
	"github.com/spf13/cobra"
)

// ExitError asks Run to exit with Code without printing anything. Tools
// wrapping another program use it to pass the program's exit code on.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Run executes cmd with a context cancelled on SIGINT or SIGTERM and
// returns the process exit code. Errors are printed to stderr.
func Run(cmd *cobra.Command, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args != nil {
		cmd.SetArgs(args)
	}
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), styles.Error(fmt.Sprintf("Error: %v", err)))
	return 1
}

// Main runs cmd with the process arguments and exits.
func Main(cmd *cobra.Command) {
	os.Exit(Run(cmd, nil))
}

// Package cli builds the cobra command trees of the homebin tools.
package cli

import (
	"fmt"

	"github.com/arthur-debert/homebin/internal/version"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// globals holds the flags every tool shares.
type globals struct {
	verbosity int
}

// newRoot returns a root command with logging, version and man page
// support wired in.
func newRoot(tool, short, long string) (*cobra.Command, *globals) {
	g := &globals{}

	root := &cobra.Command{
		Use:     tool,
		Short:   short,
		Long:    long,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(tool, g.verbosity)
			configureOutput(cmd.OutOrStdout())
			log.Debug().Str("command", cmd.Name()).Strs("args", args).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	root.SetUsageTemplate(usageTemplate)

	root.AddCommand(newVersionCmd(tool))
	root.AddCommand(newManCmd(tool))

	return root, g
}

func newVersionCmd(tool string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, version.Info(tool))
			if version.Commit != "" {
				_, _ = fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				_, _ = fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newManCmd(tool string) *cobra.Command {
	return &cobra.Command{
		Use:    "man [dir]",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			header := &doc.GenManHeader{
				Title:   formatUpper(tool),
				Section: "1",
				Source:  "homebin " + version.Version,
			}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
}

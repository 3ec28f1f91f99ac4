package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/arthur-debert/homebin/pkg/downloads"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/rules"
	"github.com/arthur-debert/homebin/pkg/ui/styles"
	"github.com/spf13/cobra"
)

// loader builds the download router; tests swap in their own options.
type loader func() (*downloads.App, error)

// NewMoveDownloadsCmd returns the move-downloads command tree.
func NewMoveDownloadsCmd() *cobra.Command {
	return newMoveDownloadsCmd(downloads.Options{})
}

func newMoveDownloadsCmd(base downloads.Options) *cobra.Command {
	root, _ := newRoot(downloads.ToolName, MsgDownloadsShort, MsgDownloadsLong)

	var configFile string
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", MsgFlagConfig)

	load := func() (*downloads.App, error) {
		opts := base
		if configFile != "" {
			opts.ConfigFile = configFile
		}
		if opts.Stderr == nil {
			opts.Stderr = root.ErrOrStderr()
		}
		return downloads.Load(opts)
	}

	root.AddCommand(newProcessCmd(load))
	root.AddCommand(newWatchCmd(load))
	root.AddCommand(newRulesCmd(load))
	root.AddCommand(newCheckCmd(load))
	installTopics(root)
	return root
}

func newProcessCmd(load loader) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: MsgProcessShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}

			results, err := app.Process(cmd.Context(), args, dryRun)
			printResults(cmd.OutOrStdout(), results, dryRun)
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func printResults(w io.Writer, results []downloads.Result, dryRun bool) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", styles.Error("failed"), r.Path, r.Err)
		case r.Rule == "":
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.Muted(MsgNoRule), r.Path)
		case dryRun:
			_, _ = fmt.Fprintf(w, "%s %s -> %s (%s)\n", styles.Warning("would "+r.Action), r.Path, styles.FilePath(r.Target), r.Rule)
		default:
			_, _ = fmt.Fprintf(w, "%s %s -> %s (%s)\n", styles.Success(actionDone(r.Action)), r.Path, styles.FilePath(r.Target), r.Rule)
		}
	}
}

// actionDone names what an action did to a file.
func actionDone(action string) string {
	switch action {
	case "move":
		return "moved"
	case "copy":
		return "copied"
	case "symlink":
		return "linked"
	case "command":
		return "ran command on"
	case "none":
		return "matched"
	default:
		return "handled"
	}
}

func newWatchCmd(load loader) *cobra.Command {
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: MsgWatchShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}

			err = app.Watch(cmd.Context(), args[0], initial)
			if stderrors.Is(err, context.Canceled) {
				err = nil
			}
			logger := logging.GetLogger("cli.watch")
			logger.Info().Err(err).Msg("Watch stopped")
			return err
		},
	}
	cmd.Flags().BoolVar(&initial, "initial", false, MsgFlagInitial)
	return cmd
}

func newRulesCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: MsgRulesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, app.Rules.Len())
			for _, r := range app.Rules.Rules() {
				rows = append(rows, []string{r.Provider, r.Name, r.Regex, targetLabel(r), r.Action.String(), r.Validator.String()})
			}
			if err := renderTable(out, []string{"Provider", "Rule", "Pattern", "Target", "Action", "Validator"}, rows); err != nil {
				return err
			}

			printSkipped(out, app.Rules.Skipped())
			return nil
		},
	}
}

func targetLabel(r *rules.Rule) string {
	switch {
	case r.Target.Func != nil:
		return "(computed)"
	case r.Target.Template == "":
		return "-"
	default:
		return r.Target.Template
	}
}

func printSkipped(w io.Writer, skipped []rules.Skipped) {
	if len(skipped) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, styles.Warning(MsgSkippedHeader))
	for _, s := range skipped {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", s.Provider, s.Err)
	}
}

func newCheckCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: MsgCheckShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(args))
			for _, path := range args {
				m, err := app.Router.Plan(path)
				switch {
				case err != nil:
					rows = append(rows, []string{path, "-", "error: " + err.Error()})
				case m == nil:
					rows = append(rows, []string{path, "-", MsgNoRule})
				default:
					rows = append(rows, []string{path, m.Rule.String(), m.Target})
				}
			}
			if err := renderTable(out, []string{"File", "Rule", "Target"}, rows); err != nil {
				return err
			}

			printSkipped(out, app.Rules.Skipped())
			return nil
		},
	}
}

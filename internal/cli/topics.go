package cli

import (
	"embed"
	"io/fs"
	"os"

	"github.com/arthur-debert/homebin/pkg/cobrax/topics"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/spf13/cobra"
)

//go:embed help/*.md help/*.txt
var helpFiles embed.FS

// installTopics adds the embedded help topics to root. Markdown is
// rendered with glamour only on a terminal.
func installTopics(root *cobra.Command) {
	logger := logging.GetLogger("cli.topics")

	sub, err := fs.Sub(helpFiles, "help")
	if err != nil {
		logger.Warn().Err(err).Msg("Help topics unavailable")
		return
	}

	var renderer topics.Renderer = topics.PlainRenderer{}
	if isTerminal(os.Stdout) {
		renderer = topics.NewGlamourRenderer()
	}

	m, err := topics.Load(sub, topics.Options{Renderer: renderer})
	if err != nil {
		logger.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m.Install(root)
}

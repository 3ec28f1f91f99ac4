package cli

import (
	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/news"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/arthur-debert/homebin/pkg/ui/prompt"
	"github.com/spf13/cobra"
)

// newsVariant describes one of the two downloader binaries.
type newsVariant struct {
	tool       string
	short      string
	configName string
	envPrefix  string

	// nextcloudFolders pins the reader to Nextcloud News and takes the
	// category from the "folder" setting.
	nextcloudFolders bool
}

// NewNewsCmd returns the news-dl command.
func NewNewsCmd() *cobra.Command {
	return newNewsCmd(newsVariant{
		tool:       "news-dl",
		short:      MsgNewsShort,
		configName: "news-dl.yml",
		envPrefix:  "NEWS_DL_",
	}, command.NewRunner())
}

// NewNextcloudNewsCmd returns the nextcloud-news-dl command.
func NewNextcloudNewsCmd() *cobra.Command {
	return newNewsCmd(newsVariant{
		tool:             "nextcloud-news-dl",
		short:            MsgNextcloudNewsShort,
		configName:       "nextcloud-news-dl.yml",
		envPrefix:        "NEXTCLOUD_NEWS_DL_",
		nextcloudFolders: true,
	}, command.NewRunner())
}

func newNewsCmd(v newsVariant, runner command.Runner) *cobra.Command {
	root, _ := newRoot(v.tool, v.short, MsgNewsLong)
	root.Args = cobra.NoArgs

	var configFile string
	var yes bool
	root.Flags().StringVarP(&configFile, "config", "c", "", MsgFlagNewsConfig)
	root.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cli.news")
		if configFile == "" {
			configFile = paths.ConfigFile(v.configName)
		}

		var overrides map[string]interface{}
		if v.nextcloudFolders {
			overrides = map[string]interface{}{"type": news.TypeNextcloud}
		}
		settings, err := news.LoadSettings(paths.ExpandHome(configFile), v.envPrefix, overrides)
		if err != nil {
			return err
		}
		job := news.Job{Category: settings.Category, Command: settings.DownloadCommand}
		if v.nextcloudFolders {
			settings.Category = settings.Folder
			job.Category = settings.Folder
			job.Noun = "folder"
		}

		ctx := cmd.Context()
		api, err := news.Connect(ctx, settings)
		if err != nil {
			return err
		}
		defer func() {
			if err := api.Close(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to close news session")
			}
		}()

		out := cmd.OutOrStdout()
		confirm := prompt.New(cmd.InOrStdin(), out).AssumeYes(yes)
		_, err = news.NewDownloader(api, runner, confirm, out).Run(ctx, job)
		return err
	}

	return root
}

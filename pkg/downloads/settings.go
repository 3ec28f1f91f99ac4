package downloads

import (
	_ "embed"
	"path/filepath"
	"time"

	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/debounce"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/notify"
	"github.com/arthur-debert/homebin/pkg/paths"
)

// ToolName names the config directory, log file and env prefix.
const ToolName = "move-downloads"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MOVE_DOWNLOADS_"

//go:embed embedded/defaults.yaml
var defaultsYAML []byte

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() []byte {
	return defaultsYAML
}

// Settings is the typed view of the configuration.
type Settings struct {
	Placeholders map[string]string
	RecentDir    string
	MaxRecent    int
	Delay        time.Duration
	RulesDir     string
	Notify       notify.Settings
}

// LoadConfig reads the embedded defaults, configFile and environment
// overrides.
func LoadConfig(configFile string) (*config.Config, error) {
	return config.Load(config.Options{
		Defaults:  defaultsYAML,
		Files:     []string{configFile},
		EnvPrefix: EnvPrefix,
	})
}

// ParseSettings extracts Settings from cfg. configDir is the directory
// holding config.yml, used for the default rules directory.
func ParseSettings(cfg *config.Config, configDir string) (Settings, error) {
	s := Settings{
		Placeholders: cfg.StringMap("placeholders"),
		MaxRecent:    cfg.Int("recent_files.max_files", 0),
		RulesDir:     cfg.String("rules_dir", filepath.Join(configDir, "rules")),
	}

	if dir := cfg.String("recent_files.path", ""); dir != "" {
		resolved, err := paths.Resolve(dir)
		if err != nil {
			return s, err
		}
		s.RecentDir = resolved
	}
	if s.MaxRecent < 0 {
		return s, errors.Newf(errors.ErrConfigInvalid, "recent_files.max_files must not be negative, got %d", s.MaxRecent)
	}

	delay, err := cfg.Duration("filesystem_events.delay", debounce.DefaultDelay)
	if err != nil {
		return s, err
	}
	if delay <= 0 {
		return s, errors.Newf(errors.ErrConfigInvalid, "filesystem_events.delay must be positive, got %s", delay)
	}
	s.Delay = delay

	rulesDir, err := paths.Resolve(s.RulesDir)
	if err != nil {
		return s, err
	}
	s.RulesDir = rulesDir

	if err := cfg.Unmarshal("notifications", &s.Notify); err != nil {
		return s, err
	}
	return s, nil
}

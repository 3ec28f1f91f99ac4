package downloads

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/actions"
	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/debounce"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/notify"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/arthur-debert/homebin/pkg/recent"
	"github.com/arthur-debert/homebin/pkg/router"
	"github.com/arthur-debert/homebin/pkg/rules"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/arthur-debert/homebin/pkg/watcher"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// Options configures Load. Zero values select the real environment.
type Options struct {
	// ConfigFile overrides ~/.config/move-downloads/config.yml.
	ConfigFile string
	// LockDir holds the per-directory watch locks. Defaults to the state dir.
	LockDir  string
	FS       types.FS
	Runner   command.Runner
	Notifier notify.Notifier
	// Stderr receives per-file log lines. Defaults to os.Stderr.
	Stderr io.Writer
}

// App is a loaded move-downloads instance.
type App struct {
	Config   *config.Config
	Settings Settings
	Rules    *rules.RuleSet
	Executor *actions.Executor
	Recent   *recent.Index
	Router   *router.Router
	Notifier notify.Notifier

	fs      types.FS
	lockDir string
	logger  zerolog.Logger
}

// Load reads configuration and rules and builds the pipeline.
// Configuration errors are fatal; invalid rule providers are skipped.
func Load(opts Options) (*App, error) {
	logger := logging.GetLogger("downloads")

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(paths.ConfigDir(ToolName), "config.yml")
	}
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Runner == nil {
		opts.Runner = command.NewRunner()
	}
	if opts.LockDir == "" {
		opts.LockDir = filepath.Join(paths.StateDir(), "locks")
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	settings, err := ParseSettings(cfg, filepath.Dir(configFile))
	if err != nil {
		return nil, err
	}

	notifier := opts.Notifier
	if notifier == nil {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		notifier = notify.New(settings.Notify, opts.Runner, stderr)
	}

	providers, err := rules.Discover(opts.FS, cfg, settings.RulesDir)
	if err != nil {
		return nil, err
	}
	rs := rules.Load(providers)

	logger.Debug().
		Strs("configFiles", cfg.LoadedFiles()).
		Str("rulesDir", settings.RulesDir).
		Int("rules", rs.Len()).
		Int("skippedProviders", len(rs.Skipped())).
		Msg("Loaded move-downloads")

	executor := actions.NewExecutor(opts.FS, opts.Runner, notifier)
	index := recent.New(opts.FS, settings.RecentDir, settings.MaxRecent)

	return &App{
		Config:   cfg,
		Settings: settings,
		Rules:    rs,
		Executor: executor,
		Recent:   index,
		Router:   router.New(rs, settings.Placeholders, executor, index, notifier),
		Notifier: notifier,
		fs:       opts.FS,
		lockDir:  opts.LockDir,
		logger:   logger,
	}, nil
}

// Result is the outcome of processing one file.
type Result struct {
	Path    string
	Handled bool
	Rule    string
	Action  string
	Target  string
	Err     error
}

// Process routes each path once. With dryRun set only the plan is
// computed. The returned error is non-nil when any file failed.
func (a *App) Process(ctx context.Context, files []string, dryRun bool) ([]Result, error) {
	results := make([]Result, 0, len(files))
	failed := 0

	for _, path := range files {
		res := Result{Path: path}

		var (
			m   *router.Match
			err error
		)
		if dryRun {
			m, err = a.Router.Plan(path)
		} else {
			m, err = a.Router.Dispatch(ctx, path)
		}
		if m != nil {
			res.Rule = m.Rule.String()
			res.Action = m.Rule.Action.String()
			res.Target = m.Target
		}
		res.Handled = m != nil && err == nil && !dryRun
		res.Err = err
		if err != nil {
			failed++
		}
		results = append(results, res)
	}

	if failed > 0 {
		return results, errors.Newf(errors.ErrActionExecute, "%d of %d files failed", failed, len(files))
	}
	return results, nil
}

// Watch processes files appearing in dir until ctx is cancelled. With
// initial set, files already in dir are submitted first. Only one watcher
// may run per directory.
func (a *App) Watch(ctx context.Context, dir string, initial bool) error {
	dir, err := paths.Resolve(dir)
	if err != nil {
		return err
	}

	unlock, err := a.lock(dir)
	if err != nil {
		return err
	}
	defer unlock()

	scheduler := debounce.New(a.fs, a.Settings.Delay, func(ctx context.Context, path string) {
		// Errors are logged and notified by the router.
		_, _ = a.Router.MatchAndDispatch(ctx, path)
	})

	w, err := watcher.New(a.fs, dir, scheduler)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedDone := make(chan error, 1)
	go func() { schedDone <- scheduler.Run(ctx) }()

	if initial {
		existing, err := a.existingFiles(dir)
		if err != nil {
			a.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to list existing files")
		}
		for _, path := range existing {
			scheduler.Submit(path)
		}
	}

	a.logger.Info().
		Str("dir", dir).
		Dur("delay", a.Settings.Delay).
		Int("rules", a.Rules.Len()).
		Msg("Watching directory")

	err = w.Run(ctx)
	cancel()
	if schedErr := <-schedDone; err == nil {
		err = schedErr
	}
	return err
}

func (a *App) existingFiles(dir string) ([]string, error) {
	entries, err := a.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// lock takes the exclusive watch lock for dir.
func (a *App) lock(dir string) (func(), error) {
	if err := os.MkdirAll(a.lockDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create lock directory %s", a.lockDir)
	}
	name := strings.ReplaceAll(strings.Trim(dir, string(filepath.Separator)), string(filepath.Separator), "_")
	lockPath := filepath.Join(a.lockDir, "watch-"+name+".lock")

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", lockPath)
	}
	if !ok {
		return nil, errors.Newf(errors.ErrAlreadyExists, "another watcher is already running for %s", dir).
			WithDetail("lock", lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn().Err(err).Str("lock", lockPath).Msg("Failed to release watch lock")
		}
	}, nil
}

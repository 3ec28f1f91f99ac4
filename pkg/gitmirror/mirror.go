// Package gitmirror records the git repositories below a directory in a
// manifest and recreates them elsewhere from that manifest.
package gitmirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/arthur-debert/homebin/pkg/ui/prompt"
	"github.com/rs/zerolog"
)

// skippedComponents are path components whose repositories are never
// mirrored.
var skippedComponents = map[string]bool{
	"checkout": true,
	"vendor":   true,
}

// Mirror stores and restores repository manifests.
type Mirror struct {
	fs      types.FS
	git     Git
	out     io.Writer
	confirm prompt.Confirmer
	logger  zerolog.Logger
}

// New returns a Mirror. Progress and dry-run lines go to out; confirm is
// asked before purging.
func New(fsys types.FS, git Git, out io.Writer, confirm prompt.Confirmer) *Mirror {
	return &Mirror{
		fs:      fsys,
		git:     git,
		out:     out,
		confirm: confirm,
		logger:  logging.GetLogger("gitmirror"),
	}
}

// Discover returns the slash-separated paths, relative to base, of every
// repository below base. base itself is not reported.
func (m *Mirror) Discover(base string, excludes Excludes) ([]string, error) {
	if _, err := m.fs.Stat(base); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "base directory %s not found", base)
	}

	var repos []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := m.fs.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
		}
		for _, entry := range entries {
			name := entry.Name()
			if name == ".git" {
				if rel != "" && m.keep(rel, excludes) {
					repos = append(repos, rel)
				}
				continue
			}
			if !entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 {
				continue
			}
			childRel := name
			if rel != "" {
				childRel = rel + "/" + name
			}
			if err := walk(filepath.Join(dir, name), childRel); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(base, ""); err != nil {
		return nil, err
	}
	return repos, nil
}

func (m *Mirror) keep(rel string, excludes Excludes) bool {
	for _, part := range strings.Split(rel, "/") {
		if skippedComponents[part] {
			return false
		}
	}
	return !excludes.Match(rel)
}

// Store writes the manifest for the repositories below base to manifest
// and returns the entries written.
func (m *Mirror) Store(ctx context.Context, base, manifest string, excludes Excludes) ([]Entry, error) {
	repos, err := m.Discover(base, excludes)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(repos))
	for _, rel := range repos {
		url, err := m.git.RemoteURL(ctx, filepath.Join(base, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCommand, "failed to read origin of %s", rel)
		}
		entries = append(entries, Entry{Path: rel, URL: url})
	}
	SortEntries(entries)

	var buf bytes.Buffer
	if err := WriteManifest(&buf, entries); err != nil {
		return nil, err
	}
	if err := m.fs.WriteFile(manifest, buf.Bytes(), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to write manifest %s", manifest)
	}

	m.logger.Info().
		Str("manifest", manifest).
		Int("repos", len(entries)).
		Msg("Stored repositories")
	return entries, nil
}

// RestoreOptions tune Restore.
type RestoreOptions struct {
	Excludes Excludes

	// Purge removes repositories below base that the manifest does not list.
	Purge bool

	// DryRun prints what would change instead of changing it.
	DryRun bool

	// Pull updates repositories that already exist.
	Pull bool
}

// Restore brings the repositories below base in line with manifest. Failing
// clones and pulls are reported and counted; the remaining entries are
// still processed.
func (m *Mirror) Restore(ctx context.Context, base, manifest string, opts RestoreOptions) error {
	data, err := m.fs.ReadFile(manifest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read manifest %s", manifest)
	}
	entries, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return err
	}

	listed := map[string]bool{}
	failed := 0
	for _, entry := range entries {
		if opts.Excludes.Match(entry.Path) {
			continue
		}
		listed[entry.Path] = true

		if err := m.restoreOne(ctx, filepath.Join(base, filepath.FromSlash(entry.Path)), entry.URL, opts); err != nil {
			m.logger.Warn().Err(err).Str("repo", entry.Path).Msg("Restore failed")
			failed++
		}
	}

	if opts.Purge {
		if err := m.purge(base, listed, opts); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errors.Newf(errors.ErrCommand, "%d of %d repositories failed", failed, len(listed))
	}
	return nil
}

func (m *Mirror) restoreOne(ctx context.Context, path, url string, opts RestoreOptions) error {
	if !m.isRepo(path) {
		if opts.DryRun {
			m.printf("Would clone %s to %s\n", url, path)
			return nil
		}
		return m.git.Clone(ctx, url, path)
	}

	current, err := m.git.RemoteURL(ctx, path)
	if err != nil {
		return err
	}
	if current != url {
		if opts.DryRun {
			m.printf("Would change repo url for %s: %s -> %s\n", path, current, url)
		} else if err := m.git.SetRemoteURL(ctx, path, url); err != nil {
			return err
		}
	}

	if opts.Pull {
		if opts.DryRun {
			m.printf("Would pull %s\n", path)
			return nil
		}
		return m.git.Pull(ctx, path)
	}
	return nil
}

func (m *Mirror) isRepo(path string) bool {
	info, err := m.fs.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func (m *Mirror) purge(base string, listed map[string]bool, opts RestoreOptions) error {
	repos, err := m.Discover(base, opts.Excludes)
	if err != nil {
		return err
	}

	var unlisted []string
	for _, rel := range repos {
		if !listed[rel] {
			unlisted = append(unlisted, filepath.Join(base, filepath.FromSlash(rel)))
		}
	}
	if len(unlisted) == 0 {
		return nil
	}
	sort.Strings(unlisted)

	m.printf("The following folders will be purged:\n\n")
	for _, path := range unlisted {
		m.printf("  %s\n", path)
	}
	m.printf("\n")

	ok, err := m.confirm.Confirm("Are you sure to continue?", false)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	for _, path := range unlisted {
		if opts.DryRun {
			m.printf("Would remove %s\n", path)
			continue
		}
		if err := m.fs.RemoveAll(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", path)
		}
		m.logger.Info().Str("path", path).Msg("Purged repository")
	}
	return nil
}

func (m *Mirror) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

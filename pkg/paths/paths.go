package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/homebin/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config home for every tool
	EnvConfigDir = "HOMEBIN_CONFIG_DIR"

	// EnvStateDir overrides the XDG state home for every tool
	EnvStateDir = "HOMEBIN_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// AppDirName is the directory used below XDG state/runtime homes
const AppDirName = "homebin"

// ConfigDir returns the configuration directory of a tool, e.g.
// ~/.config/move-downloads.
func ConfigDir(tool string) string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(ExpandHome(dir), tool)
	}
	return filepath.Join(xdg.ConfigHome, tool)
}

// ConfigFile returns a file directly in the XDG config home, e.g.
// ~/.config/news-dl.yml.
func ConfigFile(name string) string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(ExpandHome(dir), name)
	}
	return filepath.Join(xdg.ConfigHome, name)
}

// StateDir returns the homebin state directory (locks, last-played files).
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// GetHomeDirectory returns the user's home directory, falling back to $HOME.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory.
// Paths of the form ~user are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := GetHomeDirectory()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Resolve expands ~ and returns an absolute, cleaned path.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve path %s", path)
	}
	return abs, nil
}

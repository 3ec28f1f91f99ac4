// Package paths provides centralized path handling for homebin tools.
//
// Tools keep their configuration below the XDG config home
// (~/.config/<tool>/ or ~/.config/<tool>.yml) and their logs and locks
// below the XDG state home (~/.local/state/homebin/).
//
// # Environment Variables
//
//   - HOMEBIN_CONFIG_DIR: replaces $XDG_CONFIG_HOME for every tool
//   - HOMEBIN_STATE_DIR: replaces $XDG_STATE_HOME/homebin
package paths

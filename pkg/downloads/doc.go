// Package downloads wires the move-downloads tool together: configuration,
// rule providers, the router, the recent-files index, and the watch loop
// of debounce scheduler plus filesystem watcher.
//
// Configuration lives in ~/.config/move-downloads/config.yml and rule
// files in ~/.config/move-downloads/rules/.
package downloads

// Package types defines interfaces shared across homebin packages.
// The filesystem abstraction lives here so the router, the recent-files
// index and the rule loader can run against the OS or an in-memory FS.
package types

package gitmirror

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
)

// Entry is one manifest line: a repository path relative to the base
// directory and its origin URL.
type Entry struct {
	Path string
	URL  string
}

// SortEntries orders entries by path, ignoring case.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Path) < strings.ToLower(entries[j].Path)
	})
}

// WriteManifest writes entries as "path|url" lines.
func WriteManifest(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s|%s\n", e.Path, e.URL); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseManifest reads "path|url" lines. Blank lines are skipped.
func ParseManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "malformed manifest line %d: %q", lineNo, line).
				WithDetail("line", lineNo)
		}
		entries = append(entries, Entry{Path: parts[0], URL: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read manifest")
	}
	return entries, nil
}

// Excludes filters repository paths. A pattern ending in "/" excludes every
// path starting with it; any other pattern excludes that exact path.
type Excludes []string

// Match reports whether rel is excluded.
func (e Excludes) Match(rel string) bool {
	for _, pattern := range e {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(rel, pattern) {
				return true
			}
		} else if rel == pattern {
			return true
		}
	}
	return false
}

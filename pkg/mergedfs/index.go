// Package mergedfs exposes every file below a directory tree in one flat,
// read-only FUSE directory.
package mergedfs

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/types"
)

// Index maps base names to the files they came from. When two files share a
// base name the one walked last wins.
type Index struct {
	mu    sync.RWMutex
	fs    types.FS
	root  string
	files map[string]string

	// duplicates lists base names that appeared more than once in the last
	// build.
	duplicates []string
}

// NewIndex returns an empty index over root. Call Build to fill it.
func NewIndex(fsys types.FS, root string) *Index {
	return &Index{fs: fsys, root: root, files: map[string]string{}}
}

// Root is the indexed directory.
func (x *Index) Root() string { return x.root }

// Build walks the tree in lexical order and replaces the index.
func (x *Index) Build() error {
	files := map[string]string{}
	seen := map[string]bool{}
	var duplicates []string

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := x.fs.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if _, ok := files[entry.Name()]; ok && !seen[entry.Name()] {
				seen[entry.Name()] = true
				duplicates = append(duplicates, entry.Name())
			}
			files[entry.Name()] = path
		}
		return nil
	}

	if err := walk(x.root); err != nil {
		return err
	}
	sort.Strings(duplicates)

	x.mu.Lock()
	x.files = files
	x.duplicates = duplicates
	x.mu.Unlock()
	return nil
}

// Lookup returns the full path behind name.
func (x *Index) Lookup(name string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	path, ok := x.files[name]
	return path, ok
}

// Names returns the indexed names in sorted order.
func (x *Index) Names() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	names := make([]string, 0, len(x.files))
	for name := range x.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexed names.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.files)
}

// Duplicates returns the names that were shadowed in the last build.
func (x *Index) Duplicates() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.duplicates...)
}

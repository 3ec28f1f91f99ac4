// Package recent maintains a directory of symlinks to the most recently
// processed files, newest first, capped at a maximum count.
//
// Only symlinks are managed. Other files placed in the directory are
// neither counted nor removed.
package recent

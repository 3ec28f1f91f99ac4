//go:build !linux

package watcher

func newSource(dir string) (source, error) {
	s, err := newFsnotifySource(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

package mergedfs

import (
	"context"
	"syscall"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"
)

// root is the flat directory. Unknown names fail with EROFS, like every
// other attempt to change the tree.
type root struct {
	fs.Inode
	index *Index
}

var (
	_ = (fs.NodeGetattrer)((*root)(nil))
	_ = (fs.NodeReaddirer)((*root)(nil))
	_ = (fs.NodeLookuper)((*root)(nil))
)

func (r *root) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	var st syscall.Stat_t
	if err := syscall.Lstat(r.index.Root(), &st); err != nil {
		return fs.ToErrno(err)
	}
	out.FromStat(&st)
	return 0
}

func (r *root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names := r.index.Names()
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fuse.DirEntry{Name: name, Mode: fuse.S_IFREG})
	}
	return fs.NewListDirStream(entries), 0
}

func (r *root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	path, ok := r.index.Lookup(name)
	if !ok {
		return nil, syscall.EROFS
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(path, &st); err != nil {
		return nil, fs.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	node := &file{path: path}
	return r.NewInode(ctx, node, fs.StableAttr{Mode: st.Mode & syscall.S_IFMT}), 0
}

// file is a read-only view of one indexed file.
type file struct {
	fs.Inode
	path string
}

var (
	_ = (fs.NodeGetattrer)((*file)(nil))
	_ = (fs.NodeOpener)((*file)(nil))
)

func (f *file) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	var st syscall.Stat_t
	if err := syscall.Lstat(f.path, &st); err != nil {
		return fs.ToErrno(err)
	}
	out.FromStat(&st)
	return 0
}

func (f *file) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&unix.O_ACCMODE != unix.O_RDONLY {
		return nil, 0, syscall.EROFS
	}
	fd, err := unix.Open(f.path, int(flags), 0)
	if err != nil {
		return nil, 0, fs.ToErrno(err)
	}
	return fs.NewLoopbackFile(fd), 0, 0
}

// MountOptions tune Mount.
type MountOptions struct {
	AllowOther bool
	Debug      bool
}

// Mount serves index at mountpoint. The caller waits on the returned server
// and unmounts it.
func Mount(index *Index, mountpoint string, opts MountOptions) (*fuse.Server, error) {
	logger := logging.GetLogger("mergedfs")

	server, err := fs.Mount(mountpoint, &root{index: index}, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:     index.Root(),
			Name:       "mergedfs",
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
			Options:    []string{"ro"},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to mount %s", mountpoint)
	}

	logger.Info().
		Str("source", index.Root()).
		Str("mountpoint", mountpoint).
		Int("files", index.Len()).
		Msg("Mounted")
	return server, nil
}

package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFS(t *testing.T) {
	fs := NewOS()
	tmpDir := t.TempDir()

	t.Run("create_open_rename", func(t *testing.T) {
		src := filepath.Join(tmpDir, "src.bin")
		w, err := fs.Create(src, 0644)
		require.NoError(t, err)
		_, err = io.WriteString(w, "payload")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		dst := filepath.Join(tmpDir, "nested", "dst.bin")
		require.NoError(t, fs.MkdirAll(filepath.Dir(dst), 0755))
		require.NoError(t, fs.Rename(src, dst))

		r, err := fs.Open(dst)
		require.NoError(t, err)
		defer r.Close()
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		_, err = fs.Stat(src)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("lchtimes_touches_link_not_target", func(t *testing.T) {
		target := filepath.Join(tmpDir, "target.txt")
		require.NoError(t, fs.WriteFile(target, []byte("x"), 0644))
		targetInfo, err := fs.Stat(target)
		require.NoError(t, err)

		link := filepath.Join(tmpDir, "link")
		require.NoError(t, fs.Symlink(target, link))

		stamp := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
		require.NoError(t, fs.Lchtimes(link, stamp, stamp))

		linkInfo, err := fs.Lstat(link)
		require.NoError(t, err)
		assert.True(t, linkInfo.ModTime().Equal(stamp))
		assert.NotZero(t, linkInfo.Mode()&os.ModeSymlink)

		after, err := fs.Stat(target)
		require.NoError(t, err)
		assert.True(t, after.ModTime().Equal(targetInfo.ModTime()))
	})
}

func TestMemoryFS(t *testing.T) {
	fs := NewMemoryFS()

	require.NoError(t, fs.MkdirAll("/rules", 0755))
	require.NoError(t, fs.WriteFile("/rules/a.yml", []byte("rules: []"), 0644))

	entries, err := fs.ReadDir("/rules")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.yml", entries[0].Name())

	_, err = fs.ReadFile("/rules")
	assert.Error(t, err, "reading a directory must fail")

	require.NoError(t, fs.Symlink("/data/x", "/rules/link"))
	target, err := fs.Readlink("/rules/link")
	require.NoError(t, err)
	assert.Equal(t, "/data/x", target)
}

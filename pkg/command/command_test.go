package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	r := NewRunner()
	ctx := context.Background()

	t.Run("captures_output", func(t *testing.T) {
		res, err := r.Run(ctx, Shell("echo out; echo err >&2"))
		require.NoError(t, err)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("exit_code", func(t *testing.T) {
		res, err := r.Run(ctx, Shell("echo broken >&2; exit 3"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommand))
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, 3, ExitCode(err))
		assert.Equal(t, "broken", errors.GetErrorDetails(err)["stderr"])
	})

	t.Run("env_dir_and_stdin", func(t *testing.T) {
		dir := t.TempDir()
		var out bytes.Buffer
		_, err := r.Run(ctx, Command{
			Name:   "sh",
			Args:   []string{"-c", `printf '%s %s ' "$GREETING" "$(pwd)"; cat`},
			Dir:    dir,
			Env:    map[string]string{"GREETING": "hello"},
			Stdin:  strings.NewReader("input"),
			Stdout: &out,
		})
		require.NoError(t, err)
		assert.Equal(t, "hello "+dir+" input", out.String())
	})

	t.Run("missing_binary", func(t *testing.T) {
		_, err := r.Run(ctx, Command{Name: "definitely-not-a-real-binary-xyz"})
		require.Error(t, err)
		assert.Equal(t, -1, ExitCode(err))
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := r.Run(ctx, Command{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New(errors.ErrInternal, "x")))

	inner := commandError(assert.AnError, "failed", 7, "")
	outer := errors.Wrap(inner, errors.ErrActionExecute, "action failed")
	assert.Equal(t, 7, ExitCode(outer))
}

func TestString(t *testing.T) {
	assert.Equal(t, "git -C /repo pull", Command{Name: "git", Args: []string{"-C", "/repo", "pull"}}.String())
	assert.Equal(t, "sh -c echo hi", Shell("echo hi").String())
}

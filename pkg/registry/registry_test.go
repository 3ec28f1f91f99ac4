package registry

import (
	"testing"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func TestRegister(t *testing.T) {
	reg := New[testItem]()
	assert.Empty(t, reg.List())

	t.Run("valid_item", func(t *testing.T) {
		require.NoError(t, reg.Register("item1", testItem{ID: 1, Name: "one"}))
		assert.Equal(t, []string{"item1"}, reg.List())
	})

	t.Run("empty_name", func(t *testing.T) {
		err := reg.Register("", testItem{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("duplicate", func(t *testing.T) {
		err := reg.Register("item1", testItem{ID: 2})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

		got, err := reg.Get("item1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.ID)
	})
}

func TestRegistrationOrder(t *testing.T) {
	reg := New[int]()
	for i, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(name, i))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, reg.List())
	assert.Equal(t, []int{0, 1, 2}, reg.Items())

	t.Run("list_is_a_copy", func(t *testing.T) {
		names := reg.List()
		names[0] = "mutated"
		assert.Equal(t, "zeta", reg.List()[0])
	})
}

func TestGetMissing(t *testing.T) {
	reg := New[string]()
	got, err := reg.Get("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, "", got)
}

func TestMustRegister(t *testing.T) {
	reg := New[string]()
	MustRegister(reg, "a", "x")
	assert.Panics(t, func() { MustRegister(reg, "a", "y") })
}

package di

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	name  string
	order *[]string
	err   error
}

func (c *closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestContainerNestedBuild(t *testing.T) {
	c := New()
	builds := 0
	c.RegisterBuilder("inner", func(c *Container) (interface{}, error) {
		builds++
		return 21, nil
	})
	c.RegisterBuilder("outer", func(c *Container) (interface{}, error) {
		v, err := c.Get("inner")
		if err != nil {
			return nil, err
		}
		return v.(int) * 2, nil
	})

	v, err := c.Get("outer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = c.Get("inner")
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.True(t, c.Has("outer"))
	assert.False(t, c.Has("missing"))
}

func TestContainerErrors(t *testing.T) {
	c := New()
	_, err := c.Get("missing")
	require.Error(t, err)

	c.RegisterBuilder("a", func(c *Container) (interface{}, error) { return c.Get("b") })
	c.RegisterBuilder("b", func(c *Container) (interface{}, error) { return c.Get("a") })
	_, err = c.Get("a")
	require.ErrorIs(t, err, ErrCycle)

	boom := errors.New("boom")
	c.RegisterBuilder("broken", func(c *Container) (interface{}, error) { return nil, boom })
	_, err = c.Get("broken")
	require.ErrorIs(t, err, boom)
	assert.Panics(t, func() { c.MustGet("broken") })
}

func TestContainerCloseOrder(t *testing.T) {
	var order []string
	c := New()
	c.RegisterBuilder("storage", func(c *Container) (interface{}, error) {
		return &closeRecorder{name: "storage", order: &order}, nil
	})
	c.RegisterBuilder("journal", func(c *Container) (interface{}, error) {
		return &closeRecorder{name: "journal", order: &order, err: errors.New("busy")}, nil
	})
	c.RegisterBuilder("ledger", func(c *Container) (interface{}, error) {
		if _, err := c.Get("storage"); err != nil {
			return nil, err
		}
		if _, err := c.Get("journal"); err != nil {
			return nil, err
		}
		return "ledger", nil
	})

	_, err := c.Get("ledger")
	require.NoError(t, err)

	err = c.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close journal")
	assert.Equal(t, []string{"journal", "storage"}, order)

	require.NoError(t, c.Close())
	assert.Len(t, order, 2)
}

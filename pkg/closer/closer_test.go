package closer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-backend/pkg/closer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseLIFO(t *testing.T) {
	c := closer.NewCloser(0)

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		c.Add(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestCloseCollectsErrors(t *testing.T) {
	c := closer.NewCloser(0)
	c.Add(func(context.Context) error { return errors.New("redis close failed") })
	c.Add(func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis close failed")
}

func TestCloseOnce(t *testing.T) {
	c := closer.NewCloser(0)

	calls := 0
	c.Add(func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloseForcedOnTimeout(t *testing.T) {
	c := closer.NewCloser(100 * time.Millisecond)

	released := make(chan struct{})
	c.Add(func(ctx context.Context) error {
		select {
		case <-released:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	c.Add(func(context.Context) error {
		// Блокируется дольше, чем готов ждать вызывающий
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	close(released)

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
}

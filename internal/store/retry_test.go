package store

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithRetry_SucceedsAfterTransient(t *testing.T) {
	calls := 0
	v, err := connectWithRetry(context.Background(), 3, func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestConnectWithRetry_PermanentError(t *testing.T) {
	calls := 0
	_, err := connectWithRetry(context.Background(), 5, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("password authentication failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectWithRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := connectWithRetry(ctx, 5, func(context.Context) (int, error) {
		calls++
		return 0, syscall.ECONNRESET
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectWithRetry_ZeroAttempts(t *testing.T) {
	calls := 0
	_, _ = connectWithRetry(context.Background(), 0, func(context.Context) (int, error) {
		calls++
		return 0, nil
	})
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(fmt.Errorf("wrap: %w", syscall.ECONNREFUSED)))
	assert.True(t, isTransient(syscall.ECONNABORTED))
	assert.False(t, isTransient(errors.New("syntax error")))
}

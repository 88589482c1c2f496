package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type poolHooks struct {
	newErr  error
	pingErr error

	instance    *pgxpool.Pool
	capturedCtx context.Context
	capturedURL string
	pingCalled  bool
	closeCalled bool
}

// stubPoolHooks reemplaza los hooks del paquete y los restaura al terminar el test.
func stubPoolHooks(t *testing.T, hooks *poolHooks) {
	t.Helper()

	originalNewPool := newPool
	originalPingPool := pingPool
	originalClosePool := closePool
	t.Cleanup(func() {
		newPool = originalNewPool
		pingPool = originalPingPool
		closePool = originalClosePool
	})

	newPool = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
		hooks.capturedCtx = ctx
		hooks.capturedURL = url
		if hooks.newErr != nil {
			return nil, hooks.newErr
		}
		return hooks.instance, nil
	}
	pingPool = func(ctx context.Context, pool poolPinger) error {
		hooks.pingCalled = true
		return hooks.pingErr
	}
	closePool = func(pool poolPinger) {
		hooks.closeCalled = true
	}
}

func TestNewPool(t *testing.T) {
	t.Run("new pool error", func(t *testing.T) {
		hooks := &poolHooks{newErr: errors.New("new pool failed")}
		stubPoolHooks(t, hooks)

		pool, err := NewPool(context.Background(), "postgres://inventory")

		require.ErrorIs(t, err, hooks.newErr)
		require.Nil(t, pool)
		require.False(t, hooks.pingCalled)
		require.False(t, hooks.closeCalled)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		hooks := &poolHooks{instance: &pgxpool.Pool{}, pingErr: errors.New("ping failed")}
		stubPoolHooks(t, hooks)

		pool, err := NewPool(context.Background(), "postgres://inventory")

		require.ErrorIs(t, err, hooks.pingErr)
		require.Nil(t, pool)
		require.True(t, hooks.closeCalled)
	})

	t.Run("success", func(t *testing.T) {
		hooks := &poolHooks{instance: &pgxpool.Pool{}}
		stubPoolHooks(t, hooks)

		pool, err := NewPool(context.Background(), "postgres://inventory")

		require.NoError(t, err)
		require.Same(t, hooks.instance, pool)
		require.True(t, hooks.pingCalled)
		require.False(t, hooks.closeCalled)
		require.Equal(t, "postgres://inventory", hooks.capturedURL)

		deadline, ok := hooks.capturedCtx.Deadline()
		require.True(t, ok)
		require.True(t, time.Until(deadline) <= 5*time.Second)
	})
}

func TestDefaultPoolHooks(t *testing.T) {
	fake := &fakePoolPinger{}

	require.NoError(t, pingPool(context.Background(), fake))
	closePool(fake)

	require.True(t, fake.pingCalled)
	require.True(t, fake.closeCalled)
}

type fakePoolPinger struct {
	pingCalled  bool
	closeCalled bool
}

func (fake *fakePoolPinger) Ping(ctx context.Context) error {
	fake.pingCalled = true
	return nil
}

func (fake *fakePoolPinger) Close() {
	fake.closeCalled = true
}

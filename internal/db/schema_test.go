package db

import (
	"context"
	"errors"
	"testing"

	"github.com/Lelo88/inventory-app/internal/db/dbtest"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	t.Run("applies every statement in order", func(t *testing.T) {
		database := &dbtest.FakeDB{
			ExecFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("CREATE TABLE"), nil
			},
		}

		err := Migrate(context.Background(), database)

		require.NoError(t, err)
		calls := database.Calls()
		require.Len(t, calls, len(schema))
		for index, call := range calls {
			require.Equal(t, schema[index], call.Query)
			require.Empty(t, call.Args)
		}
		require.Contains(t, dbtest.NormalizeSQL(calls[2].Query), "ON categories (lower(name))")
	})

	t.Run("stops on first error", func(t *testing.T) {
		execErr := errors.New("permission denied")
		database := &dbtest.FakeDB{
			ExecFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, execErr
			},
		}

		err := Migrate(context.Background(), database)

		require.ErrorIs(t, err, execErr)
		require.Contains(t, err.Error(), "statement 1")
		require.Len(t, database.Calls(), 1)
	})
}

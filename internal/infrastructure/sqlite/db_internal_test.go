package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsForeignKeyViolation_RestrictAndMissingParent(t *testing.T) {
	ctx := context.Background()
	db, err := NewInMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO items (id, name, category, unit_of_measure, created_at, updated_at)
		VALUES ('i-1', 'Arroz', 'Grãos', 'kg', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO entries (id, seq, item_id, quantity, occurred_on, actor_id, created_at)
		VALUES ('e-1', 1, 'i-1', 3, '2024-01-02', 'u1', '2024-01-02T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM items WHERE id = 'i-1'`)
	require.Error(t, err, "ON DELETE RESTRICT")
	assert.True(t, isForeignKeyViolation(err), "código %d", sqliteCode(err))

	_, err = db.ExecContext(ctx, `INSERT INTO entries (id, seq, item_id, quantity, occurred_on, actor_id, created_at)
		VALUES ('e-2', 2, 'nope', 1, '2024-01-02', 'u1', '2024-01-02T00:00:00Z')`)
	require.Error(t, err)
	assert.True(t, isForeignKeyViolation(err), "código %d", sqliteCode(err))

	assert.False(t, isForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")), "solo errores del driver")
}

func TestOpen_DSNEnablesForeignKeys(t *testing.T) {
	db, err := Open(context.Background(), t.TempDir()+"/estoque.db")
	require.NoError(t, err)
	defer db.Close()

	var fk, timeout int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 5000, timeout)
}

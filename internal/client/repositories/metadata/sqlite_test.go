package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session.user", []byte("a@b.com")))

	v, err := r.Get(ctx, "session.user")
	require.NoError(t, err)
	assert.Equal(t, []byte("a@b.com"), v)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session.picture", nil))

	m, err := r.List(ctx)
	require.NoError(t, err)
	v, ok := m["session.picture"]
	require.True(t, ok)
	assert.Empty(t, v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{1}))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDeletePrefix_OnlyMatchingKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session.user", []byte("a")))
	require.NoError(t, r.Set(ctx, "session.token", []byte("b")))
	require.NoError(t, r.Set(ctx, "sessionXother", []byte("c")))
	require.NoError(t, r.Set(ctx, "device.id", []byte("d")))

	require.NoError(t, r.DeletePrefix(ctx, "session."))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Contains(t, m, "sessionXother", "'.' is literal, '_'/'%' are escaped")
	assert.Contains(t, m, "device.id")
}

func TestDeletePrefix_EscapesWildcards(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a_b", []byte{1}))
	require.NoError(t, r.Set(ctx, "axb", []byte{2}))

	require.NoError(t, r.DeletePrefix(ctx, "a_"))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"axb": {2}}, m)
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM metadata`).WithArgs("k").WillReturnError(boom)
	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to get metadata[k]")

	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("k", []byte("v")).WillReturnError(boom)
	err = r.Set(ctx, "k", []byte("v"))
	assert.Contains(t, err.Error(), "failed to set metadata[k]")

	mock.ExpectExec(`DELETE FROM metadata WHERE key = \?`).WithArgs("k").WillReturnError(boom)
	err = r.Delete(ctx, "k")
	assert.Contains(t, err.Error(), "failed to delete metadata[k]")

	mock.ExpectExec(`DELETE FROM metadata WHERE key LIKE`).WithArgs("session.%").WillReturnError(boom)
	err = r.DeletePrefix(ctx, "session.")
	assert.Contains(t, err.Error(), "failed to delete metadata[session.*]")

	mock.ExpectExec(`DELETE FROM metadata$`).WillReturnError(boom)
	err = r.Clear(ctx)
	assert.Contains(t, err.Error(), "failed to clear metadata")

	mock.ExpectQuery(`SELECT key, value FROM metadata`).WillReturnError(boom)
	_, err = r.List(ctx)
	assert.Contains(t, err.Error(), "failed to list metadata")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScanErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("a", []byte{1}).
		RowError(0, errors.New("row broke"))
	mock.ExpectQuery(`SELECT key, value FROM metadata`).WillReturnRows(rows)

	_, err = NewSQLiteRepository(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbx_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`DROP TABLE IF EXISTS t;
		CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT UNIQUE);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestExecOne(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO t(v) VALUES ('a'), ('b')`)
	require.NoError(t, err)

	one, err := ExecOne(ctx, db, `UPDATE t SET v = 'x' WHERE v = 'a'`)
	require.NoError(t, err)
	require.True(t, one)

	one, err = ExecOne(ctx, db, `UPDATE t SET v = v WHERE v LIKE '%'`)
	require.NoError(t, err)
	require.False(t, one, "two affected rows is not one")

	one, err = ExecOne(ctx, db, `DELETE FROM t WHERE v = 'missing'`)
	require.NoError(t, err)
	require.False(t, one)
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO t(v) VALUES ('dup')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO t(v) VALUES ('dup')`)
	require.True(t, IsUniqueViolation(err))

	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsUniqueViolation(errors.New("syntax error")))
}

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "conn refused" }
func (fakeNetErr) Timeout() bool   { return false }
func (fakeNetErr) Temporary() bool { return true }

var _ net.Error = fakeNetErr{}

func TestIsConnectivity(t *testing.T) {
	require.True(t, IsConnectivity(driver.ErrBadConn))
	require.True(t, IsConnectivity(fmt.Errorf("ping: %w", driver.ErrBadConn)))
	require.True(t, IsConnectivity(fakeNetErr{}))
	require.True(t, IsConnectivity(&pgconn.PgError{Code: "08006"}))
	require.False(t, IsConnectivity(&pgconn.PgError{Code: "42601"}))
	require.False(t, IsConnectivity(errors.New("constraint")))
	require.False(t, IsConnectivity(nil))
}

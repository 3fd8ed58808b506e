// AngelaMos | 2026
// database_test.go

package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func TestInTxCommits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE posts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := core.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE posts SET like_count = like_count + 1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := core.InTx(context.Background(), db, func(*sqlx.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = core.InTx(context.Background(), db, func(*sqlx.Tx) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgErrorClassification(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "likes_pair_key"}
	wrapped := errors.Join(errors.New("insert like"), dup)

	assert.True(t, core.IsDuplicateKeyError(wrapped))
	assert.Equal(t, "likes_pair_key", core.DuplicateConstraint(wrapped))
	assert.False(t, core.IsForeignKeyError(wrapped))

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, core.IsForeignKeyError(fk))
	assert.Empty(t, core.DuplicateConstraint(fk))
	assert.False(t, core.IsDuplicateKeyError(errors.New("plain")))
}

func TestNullableIDAndEscapeLike(t *testing.T) {
	assert.Nil(t, core.NullableID(""))
	assert.Equal(t, "abc", core.NullableID("abc"))
	assert.Equal(t, `50\% off\_now\\`, core.EscapeLike(`50% off_now\`))
}

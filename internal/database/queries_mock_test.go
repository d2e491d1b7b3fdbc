package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/require"

	"passvault/internal/models"
)

func newMockQueries(t *testing.T) (*Queries, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestCreateUser_UniqueViolationMapsToErrEmailTaken(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := q.CreateUser(context.Background(), models.NewUser{Email: "dup@example.com"})
	require.ErrorIs(t, err, models.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_OtherErrorsCarryCode(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("connection reset"))

	_, err := q.CreateUser(context.Background(), models.NewUser{Email: "a@example.com"})
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	require.Equal(t, "USER_CREATE_FAILED", oopsErr.Code())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUserToken_RowsAffected(t *testing.T) {
	q, mock := newMockQueries(t)
	token := "abc"

	mock.ExpectExec("UPDATE users SET token").
		WithArgs(&token, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET token").
		WithArgs(&token, int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := q.SetUserToken(context.Background(), 7, &token)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = q.SetUserToken(context.Background(), 8, &token)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetGrant_Mock(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("DELETE FROM password_reset_grants").
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"expires_at"}).AddRow(now.Add(time.Minute)))
	mock.ExpectQuery("DELETE FROM password_reset_grants").
		WithArgs("b@example.com").
		WillReturnError(pgx.ErrNoRows)

	ok, err := q.ConsumeResetGrant(context.Background(), "a@example.com", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = q.ConsumeResetGrant(context.Background(), "b@example.com", now)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem_ScopedToOwner(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectExec("DELETE FROM items WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(int64(3), int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ok, err := q.DeleteItem(context.Background(), 3, 9)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

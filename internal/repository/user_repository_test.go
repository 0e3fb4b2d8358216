package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndikat/teamliste/internal/model"
)

var userCols = []string{
	"id", "username", "password_hash", "name", "role",
	"password_changed_at", "last_signed_in", "created_at", "updated_at",
}

func userRow(changed *time.Time) *sqlmock.Rows {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var marker driver.Value
	if changed != nil {
		marker = *changed
	}
	return sqlmock.NewRows(userCols).
		AddRow(1, "alice", "$2a$10$hash", "Alice", model.RoleUser, marker, now, now, now)
}

func setupUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserRepoGetByUsername(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username=").
		WithArgs("alice").
		WillReturnRows(userRow(nil))

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Nil(t, u.PasswordChangedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByUsernameNotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username=").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByIDMarker(t *testing.T) {
	repo, mock := setupUserRepo(t)

	changed := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(1)).
		WillReturnRows(userRow(&changed))

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, u.PasswordChangedAt)
	assert.Equal(t, changed, *u.PasswordChangedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreate(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("bob", sqlmock.AnyArg(), "Bob", model.RoleUser).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "bob", "secret1", "Bob", model.RoleUser, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicate(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", sqlmock.AnyArg(), "Alice", model.RoleUser).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice'"))

	_, err := repo.Create(context.Background(), "alice", "secret1", "Alice", model.RoleUser, 4)
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdatePassword(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("UPDATE users SET password_hash=(.+), password_changed_at=(.+) WHERE username=").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "alice", "$2a$10$newhash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdatePasswordUnknownUser(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("UPDATE users SET password_hash=").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "nobody", "$2a$10$newhash")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoInvalidateAllSessions(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("UPDATE users SET password_changed_at=").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.InvalidateAllSessions(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoTouchLastSignedIn(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec("UPDATE users SET last_signed_in=").
		WithArgs(sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TouchLastSignedIn(context.Background(), 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

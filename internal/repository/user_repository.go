package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/syndikat/teamliste/internal/model"
	"github.com/syndikat/teamliste/internal/utils"
)

// UserRepo is the credential store. Every session validation re-reads the
// user row here so a password reset takes effect on the very next request.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,name,role,password_changed_at,last_signed_in,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		changed sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role,
		&changed, &u.LastSignedIn, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if changed.Valid {
		t := changed.Time
		u.PasswordChangedAt = &t
	}
	return u, nil
}

// Create inserts a user and returns its ID. The username is stored as given;
// lookups are case-sensitive.
func (r *UserRepo) Create(ctx context.Context, username, password, name, role string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, name, role) VALUES (?,?,?,?)",
		username, hash, name, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username match.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// TouchLastSignedIn records a successful login. Best effort: the login
// response does not depend on it.
func (r *UserRepo) TouchLastSignedIn(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_signed_in=? WHERE id=?", time.Now().UTC(), id)
	return err
}

// UpdatePassword stores a new password hash and bumps the invalidation
// marker so every previously issued token for this user stops validating.
func (r *UserRepo) UpdatePassword(ctx context.Context, username, newHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=? WHERE username=?",
		newHash, time.Now().UTC(), username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// InvalidateAllSessions bumps the marker for every user. Repeated calls
// simply move the markers further; there is nothing to make idempotent.
func (r *UserRepo) InvalidateAllSessions(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_changed_at=?", time.Now().UTC())
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/davitp/timesheet-tracker/internal/model"
	"github.com/davitp/timesheet-tracker/internal/utils"
)

// UserRepo encapsulates all database queries related to users, including
// the single active session token per user.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,COALESCE(active_token,''),created_at,updated_at"

// Create inserts a user with a freshly hashed password and returns its ID.
// The email is normalized to lower case so uniqueness is case-insensitive.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		name, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByToken fetches the user whose active session token equals the given
// value exactly. Used by logout, where only the token identifies the session.
func (r *UserRepo) GetByToken(ctx context.Context, token string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE active_token=? LIMIT 1", token)
}

// SetActiveToken stores the user's current session token. Overwriting the
// previous value is what invalidates any earlier session.
func (r *UserRepo) SetActiveToken(ctx context.Context, userID uint64, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET active_token=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		token, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearActiveToken removes the stored session token, ending the session.
func (r *UserRepo) ClearActiveToken(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET active_token=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		userID)
	return err
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ActiveToken, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

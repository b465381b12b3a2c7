package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/recipe-api/internal/model"
	"github.com/iliyamo/recipe-api/internal/utils"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

// ErrEmailExists is returned when the normalized email is already taken.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)

const userColumns = "id, email, password_hash, is_active, is_staff, is_superuser, created_at, updated_at"

// UserRepo creates and loads accounts.  Passwords are hashed with
// bcrypt at the configured cost before they reach the database.
type UserRepo struct {
	DB   *sql.DB
	Cost int
}

func NewUserRepo(db *sql.DB, cost int) *UserRepo { return &UserRepo{DB: db, Cost: cost} }

// UserOption sets an extra attribute on a user before it is inserted.
type UserOption func(*model.User)

// WithStaff marks the user as staff.
func WithStaff() UserOption { return func(u *model.User) { u.IsStaff = true } }

// WithSuperuser marks the user as superuser.
func WithSuperuser() UserOption { return func(u *model.User) { u.IsSuperuser = true } }

// WithInactive creates the user with login disabled.
func WithInactive() UserOption { return func(u *model.User) { u.IsActive = false } }

// CreateUser normalizes the email, hashes the password and inserts the user.
// An empty email yields a ValidationError for field "email".
func (r *UserRepo) CreateUser(ctx context.Context, email, password string, opts ...UserOption) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, Missing("email")
	}
	u := &model.User{Email: email, IsActive: true}
	for _, opt := range opts {
		opt(u)
	}
	hash, err := utils.HashPassword(password, r.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, is_active, is_staff, is_superuser) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.IsActive, u.IsStaff, u.IsSuperuser)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = uint64(id)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return u, nil
}

// CreateSuperuser creates a user with both staff and superuser flags set.
func (r *UserRepo) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	return r.CreateUser(ctx, email, password, WithStaff(), WithSuperuser())
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", model.NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

// SetPassword replaces the stored hash for the given user.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, password string) error {
	hash, err := utils.HashPassword(password, r.Cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

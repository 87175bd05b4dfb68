package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/userpanel/internal/domain/model"
	"github.com/ericfisherdev/userpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
// The UNIQUE index on email makes the check-and-insert atomic: a concurrent
// duplicate insert fails the constraint and surfaces as ErrEmailTaken.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user and returns it with the store-assigned id.
// AUTOINCREMENT ids are monotonic and never reused after a delete.
func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query,
		user.Name,
		user.Email,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.User{}, fmt.Errorf("create user %s: %w", user.Email, driven.ErrEmailTaken)
		}
		return model.User{}, fmt.Errorf("create user %s: %w", user.Email, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("read inserted id: %w", err)
	}

	user.ID = id
	return user, nil
}

// GetByID retrieves a user by id. Returns nil, nil if the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM users WHERE id = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email. Returns nil, nil if no user holds it.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM users WHERE email = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email %s: %w", email, err)
	}

	return user, nil
}

// ListAll returns all users in insertion order.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM users ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update replaces the mutable attributes of an existing user. Returns
// ErrUserNotFound if the user does not exist and ErrEmailTaken if another
// user already holds the new email. created_at is deliberately not touched.
func (r *UserRepo) Update(ctx context.Context, user model.User) error {
	const query = `UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		user.Name,
		user.Email,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("update user %d: %w", user.ID, driven.ErrEmailTaken)
		}
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, driven.ErrUserNotFound)
	}

	return nil
}

// Delete removes a user by id. Returns ErrUserNotFound if the user does not
// exist. The id is never handed out again (AUTOINCREMENT).
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user %d: %w", id, driven.ErrUserNotFound)
	}

	return nil
}

// ExistsByEmail reports whether any user holds the given email.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	if err := r.db.Reader.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email %s: %w", email, err)
	}

	return exists, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var createdAt, updatedAt string

	err := s.Scan(&user.ID, &user.Name, &user.Email, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	user.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &user, nil
}

// formatTime stores timestamps at nanosecond precision so that back-to-back
// updates remain strictly ordered after a round-trip.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

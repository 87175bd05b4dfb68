package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/userpanel/internal/domain/model"
)

// Sentinel errors returned by UserStore implementations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another live user already holds the email.
	ErrEmailTaken = errors.New("email already taken")
)

// UserStore defines the driven port for user persistence.
//
// Create assigns the id and returns the stored record; it returns
// ErrEmailTaken if another user already holds the email, and the
// check-and-insert must be atomic with respect to concurrent writers.
// GetByID and GetByEmail return nil, nil when no user exists.
// Update and Delete return ErrUserNotFound if the user does not exist;
// Update returns ErrEmailTaken on an email collision.
// ListAll returns users in insertion order. Ids are never reused within
// a store lifetime, even after Delete.
type UserStore interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user model.User) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

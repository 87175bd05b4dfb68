// Package memory provides the reference in-memory UserStore. It backs tests
// and development runs and documents the store contract the SQLite adapter
// must also honor.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/userpanel/internal/domain/model"
	"github.com/ericfisherdev/userpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is a mutex-guarded in-memory implementation of the UserStore port.
// Every operation runs under one lock, so the email check and the insert are
// a single atomic step for concurrent writers. Ids come from a monotonic
// counter and are never reused, even after Delete.
type UserRepo struct {
	mu     sync.Mutex
	users  map[int64]model.User
	order  []int64
	nextID int64
}

// NewUserRepo creates an empty in-memory UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		users: make(map[int64]model.User),
	}
}

// Create assigns the next id and stores the user. Returns ErrEmailTaken if a
// live user already holds the email.
func (r *UserRepo) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return model.User{}, fmt.Errorf("create user %s: %w", user.Email, driven.ErrEmailTaken)
		}
	}

	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)

	return user, nil
}

// GetByID returns the user with the given id, or nil, nil if absent.
func (r *UserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetByEmail returns the user holding the email, or nil, nil if absent.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if user := r.users[id]; user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

// ListAll returns all users in insertion order.
func (r *UserRepo) ListAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]model.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users, nil
}

// Update replaces the stored user. Returns ErrUserNotFound if the id is not
// live and ErrEmailTaken if another user holds the new email.
func (r *UserRepo) Update(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("update user %d: %w", user.ID, driven.ErrUserNotFound)
	}

	for _, existing := range r.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return fmt.Errorf("update user %d: %w", user.ID, driven.ErrEmailTaken)
		}
	}

	r.users[user.ID] = user
	return nil
}

// Delete removes the user irrevocably. Returns ErrUserNotFound if absent.
// The id counter is not rewound, so the id never resolves again.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user %d: %w", id, driven.ErrUserNotFound)
	}

	delete(r.users, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ExistsByEmail reports whether any live user holds the email.
func (r *UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == email {
			return true, nil
		}
	}
	return false, nil
}

package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/userpanel/internal/domain/port/driven"
)

// UserService owns the business invariants of the user resource: input
// validation, email uniqueness, and timestamp handling. All side effects are
// delegated to the store; the service holds no mutable state of its own.
type UserService struct {
	store  driven.UserStore
	mapper *Mapper

	// now is swapped in tests to make timestamps deterministic.
	now func() time.Time
}

// NewUserService creates a UserService with the required dependencies.
func NewUserService(store driven.UserStore, mapper *Mapper) *UserService {
	return &UserService{
		store:  store,
		mapper: mapper,
		now:    time.Now,
	}
}

// Create validates the input, enforces email uniqueness, and persists a new
// user with store-assigned id and CreatedAt = UpdatedAt = now.
func (s *UserService) Create(ctx context.Context, in UserInput) (UserView, error) {
	in = in.normalized()
	if verr := ValidateUserInput(in); verr != nil {
		return UserView{}, verr
	}

	taken, err := s.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return UserView{}, &StoreUnavailableError{Cause: err}
	}
	if taken {
		return UserView{}, &ConflictError{Field: "email"}
	}

	user := s.mapper.ToRecord(in, s.now().UTC())

	// The store's own check-and-insert is the backstop against a concurrent
	// create racing past the existence check above.
	created, err := s.store.Create(ctx, user)
	if errors.Is(err, driven.ErrEmailTaken) {
		return UserView{}, &ConflictError{Field: "email"}
	}
	if err != nil {
		return UserView{}, &StoreUnavailableError{Cause: err}
	}

	return s.mapper.ToView(created), nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (UserView, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return UserView{}, &StoreUnavailableError{Cause: err}
	}
	if user == nil {
		return UserView{}, &NotFoundError{Key: strconv.FormatInt(id, 10)}
	}
	return s.mapper.ToView(*user), nil
}

// GetByEmail returns the user holding the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return UserView{}, &StoreUnavailableError{Cause: err}
	}
	if user == nil {
		return UserView{}, &NotFoundError{Key: email}
	}
	return s.mapper.ToView(*user), nil
}

// ListAll returns every live user in insertion order.
func (s *UserService) ListAll(ctx context.Context) ([]UserView, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Cause: err}
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, s.mapper.ToView(u))
	}
	return views, nil
}

// SearchByNameContains returns users whose name contains substring,
// case-insensitively, in insertion order. An empty substring matches all.
func (s *UserService) SearchByNameContains(ctx context.Context, substring string) ([]UserView, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Cause: err}
	}

	needle := strings.ToLower(substring)
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			views = append(views, s.mapper.ToView(u))
		}
	}
	return views, nil
}

// Update re-validates the input, re-checks email uniqueness when the email
// changes (excluding the user under update), applies the new attributes, and
// bumps UpdatedAt. The id and CreatedAt never change.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (UserView, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return UserView{}, &StoreUnavailableError{Cause: err}
	}
	if existing == nil {
		return UserView{}, &NotFoundError{Key: strconv.FormatInt(id, 10)}
	}

	in = in.normalized()
	if verr := ValidateUserInput(in); verr != nil {
		return UserView{}, verr
	}

	if in.Email != existing.Email {
		other, err := s.store.GetByEmail(ctx, in.Email)
		if err != nil {
			return UserView{}, &StoreUnavailableError{Cause: err}
		}
		if other != nil && other.ID != id {
			return UserView{}, &ConflictError{Field: "email"}
		}
	}

	// UpdatedAt must strictly advance even when the wall clock has not
	// moved since the previous write.
	now := s.now().UTC()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Nanosecond)
	}

	updated := s.mapper.ApplyUpdate(*existing, in, now)

	err = s.store.Update(ctx, updated)
	switch {
	case errors.Is(err, driven.ErrUserNotFound):
		return UserView{}, &NotFoundError{Key: strconv.FormatInt(id, 10)}
	case errors.Is(err, driven.ErrEmailTaken):
		return UserView{}, &ConflictError{Field: "email"}
	case err != nil:
		return UserView{}, &StoreUnavailableError{Cause: err}
	}

	return s.mapper.ToView(updated), nil
}

// Delete removes the user irrevocably. The id never resolves to a live
// user again.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	switch {
	case errors.Is(err, driven.ErrUserNotFound):
		return &NotFoundError{Key: strconv.FormatInt(id, 10)}
	case err != nil:
		return &StoreUnavailableError{Cause: err}
	}
	return nil
}

// ExistsByEmail reports whether a live user holds the given email. A missing
// user is a false result, never an error.
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return false, &StoreUnavailableError{Cause: err}
	}
	return exists, nil
}

package application

import (
	"strings"
	"time"

	"github.com/ericfisherdev/userpanel/internal/domain/model"
)

// UserInput is the caller-supplied subset of fields accepted for create and
// update. It carries no identity and no timestamps.
type UserInput struct {
	Name  string
	Email string
}

// normalized trims surrounding whitespace and lowercases the email so that
// uniqueness is case-insensitive and the stored form is canonical.
func (in UserInput) normalized() UserInput {
	return UserInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
}

// UserView is the full caller-visible projection of a user record. It never
// exposes anything beyond the persisted fields.
type UserView struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Mapper translates between the input projection, the persisted record, and
// the output projection. All methods are pure and total.
type Mapper struct{}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToRecord builds a new record from an input. The id is left for the store
// to assign; both timestamps are set to now.
func (m *Mapper) ToRecord(in UserInput, now time.Time) model.User {
	return model.User{
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyUpdate returns existing with the mutable attributes replaced and
// UpdatedAt bumped. Identity and CreatedAt are preserved.
func (m *Mapper) ApplyUpdate(existing model.User, in UserInput, now time.Time) model.User {
	existing.Name = in.Name
	existing.Email = in.Email
	existing.UpdatedAt = now
	return existing
}

// ToView converts a persisted record to its output projection.
func (m *Mapper) ToView(u model.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

package model

import "time"

// User represents a user record managed by userpanel. ID is assigned by the
// store on creation and never changes afterwards.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package user

import (
	"errors"
	"time"
)

// Store-level sentinel errors. Repositories return these so callers don't
// depend on a concrete storage package.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// Every self-registered account gets this role; there is no
	// role-selection input on the register flow.
	DefaultRole = RoleUser
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Today returns the current UTC calendar date. CreatedAt/UpdatedAt are
// tracked at day granularity.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

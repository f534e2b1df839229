package memory

import (
	"context"
	"sync"

	"github.com/brightkube/authhub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo is an in-memory user store for tests and local runs. Uniqueness
// is enforced under the lock, so check-then-insert races behave like the
// postgres unique index.
type UsersRepo struct {
	mu      sync.RWMutex
	byEmail map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byEmail: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	u, ok := r.byEmail[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return user.User{}, user.ErrDuplicateEmail
	}

	u.ID = uuid.NewString()
	r.byEmail[u.Email] = u

	return u, nil
}

package admin

import (
	"context"
	"time"
)

// UserStore defines the contract for persisting administrator accounts.
// Implementations live in infra/store/.
type UserStore interface {
	// GetUserByUsername returns nil, nil if no user has that name.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByID returns nil, nil if no user has that ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// CreateUser inserts a user and fills in its ID.
	CreateUser(ctx context.Context, user *User) error
}

// SessionStore defines the contract for server-side sessions.
// Implementations live in infra/session/ (in-memory, Redis).
type SessionStore interface {
	Create(ctx context.Context, session *Session) error

	// Get returns nil, nil if the session does not exist.
	Get(ctx context.Context, id string) (*Session, error)

	Delete(ctx context.Context, id string) error
}

// ExpiringStore is implemented by session stores that need explicit pruning.
type ExpiringStore interface {
	// DeleteExpired removes sessions expired at now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

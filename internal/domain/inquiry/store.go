package inquiry

import (
	"context"
	"time"
)

// Store defines the contract for persisting inquiries.
// Implementations live in infra/store/ (Supabase, SQLite).
type Store interface {
	// Create inserts an inquiry and fills in its ID and CreatedAt.
	Create(ctx context.Context, inq *Inquiry) error

	// List returns every inquiry, newest first.
	List(ctx context.Context) ([]*Inquiry, error)

	// ListSince returns inquiries created at or after since, newest first.
	ListSince(ctx context.Context, since time.Time) ([]*Inquiry, error)
}

package notification

import "context"

// LogStore defines the contract for persisting delivery logs.
// Implementations live in infra/store/ (Supabase, SQLite).
type LogStore interface {
	// Create inserts a delivery log and fills in its ID.
	Create(ctx context.Context, log *DeliveryLog) error

	// GetByID returns nil, nil if no log has that ID.
	GetByID(ctx context.Context, id int64) (*DeliveryLog, error)

	// List returns one page of logs, newest first, and the total matching the filter.
	// The filter is already normalized.
	List(ctx context.Context, filter ListFilter) ([]*DeliveryLog, int, error)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"contactdesk/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const logsTable = "notification_logs"

var _ notification.LogStore = (*SupabaseLogStore)(nil)

// SupabaseLogStore implements notification.LogStore on the notification_logs table.
type SupabaseLogStore struct {
	client *supa.Client
}

// DeliveryLogs returns a delivery log store sharing this store's client.
func (s *SupabaseStore) DeliveryLogs() *SupabaseLogStore {
	return &SupabaseLogStore{client: s.client}
}

type logRow struct {
	ID           int64   `json:"id,omitempty"`
	Type         string  `json:"type"`
	Role         string  `json:"role"`
	Recipient    string  `json:"recipient"`
	Status       string  `json:"status"`
	ProviderID   *string `json:"provider_id,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// Create inserts a new delivery log record.
func (s *SupabaseLogStore) Create(ctx context.Context, log *notification.DeliveryLog) error {
	row := logRow{
		Type:         log.Type,
		Role:         log.Role,
		Recipient:    log.Recipient,
		Status:       string(log.Status),
		ProviderID:   nullable(log.ProviderID),
		ErrorMessage: nullable(log.ErrorMessage),
	}
	if !log.CreatedAt.IsZero() {
		row.CreatedAt = log.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	data, _, err := s.client.From(logsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}

	var results []logRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}
	if len(results) > 0 {
		log.ID = results[0].ID
	}
	return nil
}

// GetByID returns nil, nil if no log has that ID.
func (s *SupabaseLogStore) GetByID(ctx context.Context, id int64) (*notification.DeliveryLog, error) {
	data, _, err := s.client.From(logsTable).Select("*", "", false).Eq("id", strconv.FormatInt(id, 10)).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching delivery log: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing delivery log: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToLog(&rows[0]), nil
}

// List retrieves delivery logs with pagination and filtering.
func (s *SupabaseLogStore) List(ctx context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	query := s.client.From(logsTable).Select("*", "exact", false)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Recipient != "" {
		query = query.Eq("recipient", filter.Recipient)
	}
	if filter.Type != "" {
		query = query.Eq("type", filter.Type)
	}

	offset := filter.Offset()
	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing delivery log list: %w", err)
	}

	logs := make([]*notification.DeliveryLog, len(rows))
	for i := range rows {
		logs[i] = rowToLog(&rows[i])
	}
	return logs, int(count), nil
}

// rowToLog converts a logRow to a DeliveryLog.
func rowToLog(row *logRow) *notification.DeliveryLog {
	log := &notification.DeliveryLog{
		ID:           row.ID,
		Type:         row.Type,
		Role:         row.Role,
		Recipient:    row.Recipient,
		Status:       notification.DeliveryStatus(row.Status),
		ProviderID:   deref(row.ProviderID),
		ErrorMessage: deref(row.ErrorMessage),
	}
	if t, ok := parseTime(row.CreatedAt); ok {
		log.CreatedAt = t
	}
	return log
}

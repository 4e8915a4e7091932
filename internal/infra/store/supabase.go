package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"contactdesk/internal/domain/admin"
	"contactdesk/internal/domain/inquiry"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const (
	contactsTable = "contacts"
	usersTable    = "users"
)

var (
	_ inquiry.Store   = (*SupabaseStore)(nil)
	_ admin.UserStore = (*SupabaseStore)(nil)
)

// SupabaseStore implements the inquiry and user stores using the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// contactRow is the PostgREST representation of an inquiry.
type contactRow struct {
	ID         int64   `json:"id,omitempty"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Subject    *string `json:"subject"`
	Company    *string `json:"company"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

type userRow struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Create inserts a new inquiry and fills in the generated ID and timestamp.
func (s *SupabaseStore) Create(ctx context.Context, inq *inquiry.Inquiry) error {
	row := contactRow{
		Name:       inq.Name,
		Email:      inq.Email,
		Subject:    nullable(inq.Subject),
		Company:    nullable(inq.Company),
		Department: nullable(inq.Department),
		Phone:      nullable(inq.Phone),
		Message:    inq.Message,
	}
	if !inq.CreatedAt.IsZero() {
		row.CreatedAt = inq.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	data, _, err := s.client.From(contactsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting inquiry: %w", err)
	}

	var results []contactRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		inq.ID = results[0].ID
		if t, ok := parseTime(results[0].CreatedAt); ok {
			inq.CreatedAt = t
		}
	}

	return nil
}

// List returns every inquiry, newest first.
func (s *SupabaseStore) List(ctx context.Context) ([]*inquiry.Inquiry, error) {
	query := s.client.From(contactsTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	return s.queryInquiries(query)
}

// ListSince returns inquiries created at or after since, newest first.
func (s *SupabaseStore) ListSince(ctx context.Context, since time.Time) ([]*inquiry.Inquiry, error) {
	query := s.client.From(contactsTable).
		Select("*", "", false).
		Gte("created_at", since.UTC().Format(time.RFC3339Nano)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	return s.queryInquiries(query)
}

func (s *SupabaseStore) queryInquiries(query *postgrest.FilterBuilder) ([]*inquiry.Inquiry, error) {
	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}

	var rows []contactRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing inquiry list: %w", err)
	}

	out := make([]*inquiry.Inquiry, len(rows))
	for i := range rows {
		out[i] = rowToInquiry(&rows[i])
	}
	return out, nil
}

// GetUserByUsername returns nil, nil if no user has that name.
func (s *SupabaseStore) GetUserByUsername(ctx context.Context, username string) (*admin.User, error) {
	data, _, err := s.client.From(usersTable).Select("*", "", false).Eq("username", username).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return firstUser(data)
}

// GetUserByID returns nil, nil if no user has that ID.
func (s *SupabaseStore) GetUserByID(ctx context.Context, id int64) (*admin.User, error) {
	data, _, err := s.client.From(usersTable).Select("*", "", false).Eq("id", strconv.FormatInt(id, 10)).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return firstUser(data)
}

// CreateUser inserts a user and fills in its ID.
func (s *SupabaseStore) CreateUser(ctx context.Context, user *admin.User) error {
	row := userRow{Username: user.Username, Password: user.PasswordHash}

	data, _, err := s.client.From(usersTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	created, err := firstUser(data)
	if err != nil {
		return err
	}
	if created != nil {
		user.ID = created.ID
	}
	return nil
}

func firstUser(data []byte) (*admin.User, error) {
	var rows []userRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing user: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &admin.User{ID: rows[0].ID, Username: rows[0].Username, PasswordHash: rows[0].Password}, nil
}

// rowToInquiry converts a contactRow to an Inquiry.
func rowToInquiry(row *contactRow) *inquiry.Inquiry {
	inq := &inquiry.Inquiry{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Subject:    deref(row.Subject),
		Company:    deref(row.Company),
		Department: deref(row.Department),
		Phone:      deref(row.Phone),
		Message:    row.Message,
	}
	if t, ok := parseTime(row.CreatedAt); ok {
		inq.CreatedAt = t
	}
	return inq
}

// nullable stores empty optional fields as NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// timestamp without time zone columns come back without an offset
	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

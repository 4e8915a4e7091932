package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactdesk/internal/domain/admin"
	"contactdesk/internal/domain/inquiry"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ inquiry.Store   = (*SQLiteStore)(nil)
	_ admin.UserStore = (*SQLiteStore)(nil)
)

// contactModel mirrors the contacts table used by the Supabase store.
type contactModel struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Name       string
	Email      string
	Subject    string
	Company    string
	Department string
	Phone      string
	Message    string
	CreatedAt  time.Time `gorm:"index"`
}

func (contactModel) TableName() string { return contactsTable }

type userModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"uniqueIndex"`
	Password string
}

func (userModel) TableName() string { return usersTable }

// SQLiteStore implements the inquiry and user stores on a local SQLite file via gorm.
// Intended for development and single-instance deployments.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql handle: %w", err)
	}
	// SQLite allows a single writer, and each ":memory:" connection is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&contactModel{}, &userModel{}, &logModel{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a new inquiry and fills in the generated ID and timestamp.
func (s *SQLiteStore) Create(ctx context.Context, inq *inquiry.Inquiry) error {
	m := contactModel{
		Name:       inq.Name,
		Email:      inq.Email,
		Subject:    inq.Subject,
		Company:    inq.Company,
		Department: inq.Department,
		Phone:      inq.Phone,
		Message:    inq.Message,
		CreatedAt:  inq.CreatedAt.UTC(),
	}
	if inq.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting inquiry: %w", err)
	}

	inq.ID = m.ID
	inq.CreatedAt = m.CreatedAt
	return nil
}

// List returns every inquiry, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*inquiry.Inquiry, error) {
	var rows []contactModel
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	return toInquiries(rows), nil
}

// ListSince returns inquiries created at or after since, newest first.
func (s *SQLiteStore) ListSince(ctx context.Context, since time.Time) ([]*inquiry.Inquiry, error) {
	var rows []contactModel
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	return toInquiries(rows), nil
}

// GetUserByUsername returns nil, nil if no user has that name.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*admin.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

// GetUserByID returns nil, nil if no user has that ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*admin.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// CreateUser inserts a user and fills in its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *admin.User) error {
	m := userModel{Username: user.Username, Password: user.PasswordHash}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	user.ID = m.ID
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) findUser(ctx context.Context, query string, arg any) (*admin.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &admin.User{ID: m.ID, Username: m.Username, PasswordHash: m.Password}, nil
}

func toInquiries(rows []contactModel) []*inquiry.Inquiry {
	out := make([]*inquiry.Inquiry, len(rows))
	for i, m := range rows {
		out[i] = &inquiry.Inquiry{
			ID:         m.ID,
			Name:       m.Name,
			Email:      m.Email,
			Subject:    m.Subject,
			Company:    m.Company,
			Department: m.Department,
			Phone:      m.Phone,
			Message:    m.Message,
			CreatedAt:  m.CreatedAt,
		}
	}
	return out
}

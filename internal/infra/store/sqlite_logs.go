package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactdesk/internal/domain/notification"

	"gorm.io/gorm"
)

var _ notification.LogStore = (*SQLiteLogStore)(nil)

type logModel struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	Type         string
	Role         string
	Recipient    string `gorm:"index"`
	Status       string `gorm:"index"`
	ProviderID   string
	ErrorMessage string
	CreatedAt    time.Time `gorm:"index"`
}

func (logModel) TableName() string { return logsTable }

// SQLiteLogStore implements notification.LogStore on the SQLite database.
type SQLiteLogStore struct {
	db *gorm.DB
}

// DeliveryLogs returns a delivery log store sharing this store's connection.
func (s *SQLiteStore) DeliveryLogs() *SQLiteLogStore {
	return &SQLiteLogStore{db: s.db}
}

// Create inserts a new delivery log record.
func (s *SQLiteLogStore) Create(ctx context.Context, log *notification.DeliveryLog) error {
	m := logModel{
		Type:         log.Type,
		Role:         log.Role,
		Recipient:    log.Recipient,
		Status:       string(log.Status),
		ProviderID:   log.ProviderID,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    log.CreatedAt.UTC(),
	}
	if log.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	log.ID = m.ID
	return nil
}

// GetByID returns nil, nil if no log has that ID.
func (s *SQLiteLogStore) GetByID(ctx context.Context, id int64) (*notification.DeliveryLog, error) {
	var m logModel
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching delivery log: %w", err)
	}
	return modelToLog(&m), nil
}

// List retrieves delivery logs with pagination and filtering.
func (s *SQLiteLogStore) List(ctx context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	query := s.db.WithContext(ctx).Model(&logModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Recipient != "" {
		query = query.Where("recipient = ?", filter.Recipient)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	// New session so Count and Find each start from the filtered statement.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting delivery logs: %w", err)
	}

	var rows []logModel
	err := query.
		Order("created_at DESC, id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	logs := make([]*notification.DeliveryLog, len(rows))
	for i := range rows {
		logs[i] = modelToLog(&rows[i])
	}
	return logs, int(total), nil
}

func modelToLog(m *logModel) *notification.DeliveryLog {
	return &notification.DeliveryLog{
		ID:           m.ID,
		Type:         m.Type,
		Role:         m.Role,
		Recipient:    m.Recipient,
		Status:       notification.DeliveryStatus(m.Status),
		ProviderID:   m.ProviderID,
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
	}
}

package notification

import "time"

// DeliveryStatus is the recorded result of one send attempt.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryLog is a persisted record of one send attempt.
type DeliveryLog struct {
	ID           int64          `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Recipient    string         `json:"recipient"`
	Status       DeliveryStatus `json:"status"`
	ProviderID   string         `json:"provider_id,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// newDeliveryLog converts a dispatch outcome into a log record.
func newDeliveryLog(o DispatchOutcome, at time.Time) *DeliveryLog {
	log := &DeliveryLog{
		Type:         string(o.Type),
		Role:         string(o.Role),
		Recipient:    o.Recipient,
		Status:       StatusFailed,
		ProviderID:   o.ProviderID,
		ErrorMessage: o.ErrorMessage(),
		CreatedAt:    at,
	}
	if o.Succeeded {
		log.Status = StatusSent
	}
	return log
}

// ListFilter defines pagination and filtering options for listing delivery logs.
type ListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	Recipient string `form:"recipient"`
	Type      string `form:"type"`
}

// Normalize applies the default page and clamps the page size to 1..100.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// Offset returns the index of the first row on the page.
func (f *ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ListResponse wraps a paginated list of delivery logs.
type ListResponse struct {
	Notifications []*DeliveryLog `json:"notifications"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

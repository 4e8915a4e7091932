package inquiry

import (
	"time"

	"contactdesk/internal/domain/notification"
)

// Inquiry is a persisted contact submission.
type Inquiry struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Company    string    `json:"company"`
	Department string    `json:"department"`
	Phone      string    `json:"phone"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// submittedAtLayout formats the receipt time shown in notifications.
const submittedAtLayout = "2006/01/02 15:04"

// Params builds the template parameters for this inquiry, with times shown in loc.
func (i *Inquiry) Params(loc *time.Location) notification.Parameters {
	return notification.Parameters{
		notification.FieldName:        i.Name,
		notification.FieldEmail:       i.Email,
		notification.FieldSubject:     i.Subject,
		notification.FieldCompany:     i.Company,
		notification.FieldDepartment:  i.Department,
		notification.FieldPhone:       i.Phone,
		notification.FieldMessage:     i.Message,
		notification.FieldSubmittedAt: i.CreatedAt.In(loc).Format(submittedAtLayout),
	}
}

// SubmitRequest is the API request payload for a new inquiry.
type SubmitRequest struct {
	Name       string `json:"name" binding:"required,max=50"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Subject    string `json:"subject" binding:"max=200"`
	Company    string `json:"company" binding:"max=100"`
	Department string `json:"department" binding:"max=100"`
	Phone      string `json:"phone" binding:"omitempty,jpphone"`
	Message    string `json:"message" binding:"required,max=1000"`
}

func (r *SubmitRequest) toInquiry() *Inquiry {
	return &Inquiry{
		Name:       r.Name,
		Email:      r.Email,
		Subject:    r.Subject,
		Company:    r.Company,
		Department: r.Department,
		Phone:      r.Phone,
		Message:    r.Message,
	}
}

// SubmitResponse is returned once an inquiry has been stored.
// EmailSent reflects only the confirmation to the submitter.
type SubmitResponse struct {
	*Inquiry
	EmailSent bool   `json:"emailSent"`
	Warning   string `json:"warning,omitempty"`
}

// DailyCount is the number of inquiries received on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// WeeklySummary covers the last seven days, oldest first, ending today.
type WeeklySummary struct {
	Days  []DailyCount `json:"days"`
	Total int          `json:"total"`
}

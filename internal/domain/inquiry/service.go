package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/notification"
)

// AdminEmailKey is the configuration key holding the optional administrator address.
const AdminEmailKey = "notify.admin_email"

// User-facing messages.
const (
	MsgEmailWarning = "お問い合わせ内容は保存されましたが、確認メールの送信に失敗しました。担当者より改めてご連絡させていただきます。"
	MsgRateLimited  = "短時間に多くのお問い合わせが送信されました。しばらく経ってからもう一度お試しください。"
)

// Notifier sends the notifications for a stored inquiry.
type Notifier interface {
	NotifyAll(ctx context.Context, primary notification.Target, secondary string) (*notification.DispatchReport, error)
}

// Service orchestrates inquiry intake and the admin views.
// Intake flow: check rate limit → persist → notify. Persistence is authoritative;
// notification is best-effort and only annotates the response.
type Service struct {
	store       Store
	notifier    Notifier
	rateLimiter RecipientRateLimiter
	settings    notification.ConfigSource
	location    *time.Location
	now         func() time.Time
}

// NewService creates a new inquiry service. rateLimiter and settings may be nil.
func NewService(store Store, notifier Notifier, rateLimiter RecipientRateLimiter, settings notification.ConfigSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		settings:    settings,
		location:    loc,
		now:         time.Now,
	}
}

// Submit stores a new inquiry and notifies the submitter and, if configured, the administrator.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	// Check per-submitter rate limit
	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.Allow(ctx, req.Email)
		if err != nil {
			slog.Error("rate limit check failed, proceeding without limit", "recipient", req.Email, "error", err)
			// Fail open: a Redis outage must not block intake
		} else if !allowed {
			return nil, common.NewTooManyRequestsError(MsgRateLimited)
		}
	}

	inq := req.toInquiry()
	if err := s.store.Create(ctx, inq); err != nil {
		return nil, fmt.Errorf("creating inquiry: %w", err)
	}
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = s.now()
	}

	slog.Info("inquiry stored", "inquiry_id", inq.ID, "to", inq.Email)

	// The inquiry is already stored, so a client disconnect must not cut the sends short.
	report, err := s.notifier.NotifyAll(context.WithoutCancel(ctx), notification.Target{
		Recipient: inq.Email,
		Params:    inq.Params(s.location),
	}, s.adminAddress())
	if err != nil {
		slog.Error("confirmation template is misconfigured",
			"inquiry_id", inq.ID,
			"error", err,
		)
	}

	resp := &SubmitResponse{Inquiry: inq}
	if report != nil {
		resp.EmailSent = report.Primary.Succeeded
		for _, outcome := range report.Secondary {
			if !outcome.Succeeded {
				slog.Warn("admin notification not delivered",
					"inquiry_id", inq.ID,
					"to", outcome.Recipient,
					"error", outcome.ErrorMessage(),
				)
			}
		}
	}
	if !resp.EmailSent {
		resp.Warning = MsgEmailWarning
	}

	return resp, nil
}

func (s *Service) adminAddress() string {
	if s.settings == nil {
		return ""
	}
	addr, _ := s.settings.Lookup(AdminEmailKey)
	return addr
}

// List returns every stored inquiry, newest first.
func (s *Service) List(ctx context.Context) ([]*Inquiry, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	if items == nil {
		items = []*Inquiry{}
	}
	return items, nil
}

// WeeklySummary counts inquiries per calendar day for the last seven days, today included.
func (s *Service) WeeklySummary(ctx context.Context) (*WeeklySummary, error) {
	today := startOfDay(s.now().In(s.location))
	start := today.AddDate(0, 0, -6)

	items, err := s.store.ListSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("listing recent inquiries: %w", err)
	}

	counts := make(map[string]int, 7)
	for _, inq := range items {
		counts[inq.CreatedAt.In(s.location).Format(dateLayout)]++
	}

	summary := &WeeklySummary{Days: make([]DailyCount, 0, 7)}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		n := counts[day.Format(dateLayout)]
		summary.Days = append(summary.Days, DailyCount{
			Date:  day.Format(dateLayout),
			Day:   fmt.Sprintf("%d/%d", day.Month(), day.Day()),
			Count: n,
		})
		summary.Total += n
	}

	return summary, nil
}

const dateLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"contactdesk/internal/common"
)

// Service dispatches notifications and keeps a delivery log of every attempt.
type Service struct {
	dispatcher *Dispatcher
	logs       LogStore
	now        func() time.Time
}

// NewService creates a new notification service. logs may be nil, in which case
// nothing is recorded and listing returns an empty page.
func NewService(dispatcher *Dispatcher, logs LogStore) *Service {
	return &Service{
		dispatcher: dispatcher,
		logs:       logs,
		now:        time.Now,
	}
}

// NotifyAll dispatches like Dispatcher.NotifyAll and then records each outcome.
// Recording failures are logged and never change the report.
func (s *Service) NotifyAll(ctx context.Context, primary Target, secondary string) (*DispatchReport, error) {
	report, err := s.dispatcher.NotifyAll(ctx, primary, secondary)
	if report != nil {
		s.record(ctx, report.Primary)
		for _, o := range report.Secondary {
			s.record(ctx, o)
		}
	}
	return report, err
}

func (s *Service) record(ctx context.Context, o DispatchOutcome) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Create(ctx, newDeliveryLog(o, s.now())); err != nil {
		slog.Error("failed to record delivery",
			"type", o.Type,
			"to", o.Recipient,
			"error", err,
		)
	}
}

// GetDelivery retrieves a delivery log by ID.
func (s *Service) GetDelivery(ctx context.Context, id string) (*DeliveryLog, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || s.logs == nil {
		return nil, common.NewNotFoundError("notification", id)
	}

	log, err := s.logs.GetByID(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("fetching delivery log: %w", err)
	}
	if log == nil {
		return nil, common.NewNotFoundError("notification", id)
	}
	return log, nil
}

// ListDeliveries retrieves delivery logs with pagination and filtering.
func (s *Service) ListDeliveries(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	filter.Normalize()

	resp := &ListResponse{
		Notifications: []*DeliveryLog{},
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}
	if s.logs == nil {
		return resp, nil
	}

	logs, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing delivery logs: %w", err)
	}
	if logs != nil {
		resp.Notifications = logs
	}
	resp.Total = total
	return resp, nil
}

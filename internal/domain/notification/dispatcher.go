package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contactdesk/internal/common"
)

// DispatcherConfig holds settings shared by every send.
type DispatcherConfig struct {
	// From is the sender address placed on every message.
	From string

	// SendTimeout bounds a single transport call.
	SendTimeout time.Duration
}

// Dispatcher renders notifications and hands them to the transport.
// It keeps no per-call state, so one instance serves any number of concurrent inquiries.
// Each send is attempted exactly once; retries belong to the transport or a higher layer.
type Dispatcher struct {
	renderer  TemplateRenderer
	transport Transport
	config    DispatcherConfig
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(renderer TemplateRenderer, transport Transport, cfg DispatcherConfig) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		renderer:  renderer,
		transport: transport,
		config:    cfg,
	}
}

// Notify renders notifType with params and sends it to recipient.
// Failures are reported in the outcome, never returned.
func (d *Dispatcher) Notify(ctx context.Context, notifType NotificationType, recipient string, params Parameters) DispatchOutcome {
	return d.send(ctx, notifType, RolePrimary, recipient, params)
}

// NotifyAll sends the confirmation to the submitter and, when secondary is non-empty,
// an admin notification to that address. The two sends are independent: the admin
// notification is attempted even if the confirmation failed, and its failure never
// changes the primary outcome.
//
// The returned error is non-nil only when the confirmation template itself is
// malformed. The report is always returned.
func (d *Dispatcher) NotifyAll(ctx context.Context, primary Target, secondary string) (*DispatchReport, error) {
	report := &DispatchReport{
		Primary:   d.send(ctx, TypeConfirmation, RolePrimary, primary.Recipient, primary.Params),
		Secondary: make([]DispatchOutcome, 0, 1),
	}

	if secondary != "" {
		params := primary.Params
		if !params.Present(FieldEmail) {
			params = params.With(FieldEmail, primary.Recipient)
		}

		outcome := d.send(ctx, TypeAdminNotification, RoleSecondary, secondary, params)
		if !outcome.Succeeded && IsConfigurationError(outcome.Err) {
			slog.Error("admin notification template is misconfigured",
				"type", outcome.Type,
				"error", outcome.Err,
			)
		}
		report.Secondary = append(report.Secondary, outcome)
	}

	if IsConfigurationError(report.Primary.Err) {
		return report, report.Primary.Err
	}
	return report, nil
}

// send performs one render-and-deliver attempt.
func (d *Dispatcher) send(ctx context.Context, notifType NotificationType, role RecipientRole, recipient string, params Parameters) DispatchOutcome {
	start := time.Now()
	outcome := DispatchOutcome{
		Recipient: recipient,
		Type:      notifType,
		Role:      role,
	}

	rendered, err := d.renderer.Render(notifType, params)
	if err != nil {
		outcome.Err = fmt.Errorf("rendering %s: %w", notifType, err)
		slog.Error("notification render failed",
			"type", notifType,
			"recipient_role", role,
			"error", err,
		)
		return outcome
	}

	msg := &Message{
		To:      recipient,
		From:    d.config.From,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	providerID, err := d.transport.Send(sendCtx, msg)
	if err != nil {
		outcome.Err = err
		var provErr *common.ProviderError
		if !errors.As(err, &provErr) {
			outcome.Err = common.WrapProviderError(d.transport.Name(), err)
		}

		level := slog.LevelError
		if role == RoleSecondary {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "notification delivery failed",
			"type", notifType,
			"recipient_role", role,
			"to", recipient,
			"transport", d.transport.Name(),
			"error", err,
			"duration", time.Since(start),
		)
		return outcome
	}

	outcome.Succeeded = true
	outcome.ProviderID = providerID

	slog.Info("notification sent",
		"type", notifType,
		"recipient_role", role,
		"to", recipient,
		"provider_id", providerID,
		"duration", time.Since(start),
	)

	return outcome
}

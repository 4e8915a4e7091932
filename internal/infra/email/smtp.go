package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contactdesk/internal/domain/notification"

	"github.com/wneessen/go-mail"
)

var _ notification.Transport = (*SMTPProvider)(nil)

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	SSL         bool
	AuthType    string
	Username    string
	Password    string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// SMTPProvider sends emails through an SMTP relay.
// A fresh client is dialed per message and closed before Send returns.
type SMTPProvider struct {
	config  SMTPConfig
	options []mail.Option
}

// NewSMTPProvider creates a new SMTP email provider and validates its options.
func NewSMTPProvider(cfg SMTPConfig) (*SMTPProvider, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	var options []mail.Option

	if cfg.Port != 0 {
		options = append(options, mail.WithPort(cfg.Port))
	}

	if cfg.SSL {
		options = append(options, mail.WithSSLPort(true))
	} else {
		options = append(options, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	// Relays without credentials get no AUTH at all.
	if cfg.Username != "" {
		authType := mail.SMTPAuthPlain
		if cfg.AuthType != "" {
			authType = mail.SMTPAuthType(strings.ToUpper(cfg.AuthType))
		}
		options = append(options,
			mail.WithSMTPAuth(authType),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.Timeout > 0 {
		options = append(options, mail.WithTimeout(cfg.Timeout))
	}

	if _, err := mail.NewClient(cfg.Host, options...); err != nil {
		return nil, fmt.Errorf("configuring smtp client: %w", err)
	}

	return &SMTPProvider{config: cfg, options: options}, nil
}

// Name identifies the transport.
func (p *SMTPProvider) Name() string {
	return "smtp"
}

// Send delivers an email over SMTP and returns the generated Message-ID.
func (p *SMTPProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	m, err := p.buildMessage(msg)
	if err != nil {
		return "", err
	}

	client, err := mail.NewClient(p.config.Host, p.options...)
	if err != nil {
		return "", fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("sending via smtp: %w", err)
	}

	if ids := m.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		return strings.Trim(ids[0], "<>"), nil
	}
	return "", nil
}

// buildMessage converts a rendered message into a MIME message with a
// plain-text body and an html alternative.
func (p *SMTPProvider) buildMessage(msg *notification.Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	from := p.config.FromAddress
	if msg.From != "" {
		from = msg.From
	}

	if p.config.FromName != "" {
		if err := m.FromFormat(p.config.FromName, from); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := m.From(from); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	return m, nil
}

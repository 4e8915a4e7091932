package notification

import "context"

// Transport defines the contract for the service that puts a message on the wire.
// Implementations live in infra/email/ (SMTP via go-mail, Resend over HTTP).
type Transport interface {
	// Send delivers a rendered message and returns the provider's message ID.
	Send(ctx context.Context, msg *Message) (string, error)

	// Name identifies the transport in logs and errors.
	Name() string
}

// TemplateRenderer defines the contract for resolving and rendering notification templates.
// Implementations live in infra/template/.
type TemplateRenderer interface {
	// Render resolves the template for notifType and evaluates it against params.
	// Malformed conditional markers yield a *ConfigurationError.
	Render(notifType NotificationType, params Parameters) (*RenderedMessage, error)
}

// ConfigSource is a read-only key/value lookup. A missing key is not an error.
type ConfigSource interface {
	Lookup(key string) (string, bool)
}

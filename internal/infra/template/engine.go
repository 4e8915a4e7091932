package template

import (
	"errors"
	"fmt"

	"contactdesk/internal/domain/notification"
)

var _ notification.TemplateRenderer = (*Engine)(nil)

// Template fields, as used in override keys and error reports.
const (
	fieldSubject = "subject"
	fieldText    = "text"
	fieldHTML    = "html"
)

// Engine resolves templates from configuration overrides and built-in defaults, then renders them.
// Overrides are read on every call so configuration changes apply without a restart.
type Engine struct {
	overrides notification.ConfigSource
}

// NewEngine creates a new template engine. overrides may be nil, in which case
// only the built-in defaults are used.
func NewEngine(overrides notification.ConfigSource) (*Engine, error) {
	for _, t := range notification.AllTypes() {
		if _, ok := defaults[t]; !ok {
			return nil, fmt.Errorf("no default template registered for type: %s", t)
		}
	}
	return &Engine{overrides: overrides}, nil
}

// OverrideKey returns the configuration key that overrides field of notifType.
func OverrideKey(notifType notification.NotificationType, field string) string {
	return fmt.Sprintf("templates.%s.%s", notifType, field)
}

// Resolve returns the template for notifType. Each field comes from its override when one
// is set and non-empty, otherwise from the built-in default.
func (e *Engine) Resolve(notifType notification.NotificationType) (notification.TemplateSource, error) {
	src, ok := defaults[notifType]
	if !ok {
		return notification.TemplateSource{}, fmt.Errorf("no template registered for type: %s", notifType)
	}

	src.Subject = e.override(notifType, fieldSubject, src.Subject)
	src.Text = e.override(notifType, fieldText, src.Text)
	src.HTML = e.override(notifType, fieldHTML, src.HTML)

	return src, nil
}

func (e *Engine) override(notifType notification.NotificationType, field, fallback string) string {
	if e.overrides == nil {
		return fallback
	}
	if v, ok := e.overrides.Lookup(OverrideKey(notifType, field)); ok && v != "" {
		return v
	}
	return fallback
}

// Render resolves and renders the template for notifType.
func (e *Engine) Render(notifType notification.NotificationType, params notification.Parameters) (*notification.RenderedMessage, error) {
	src, err := e.Resolve(notifType)
	if err != nil {
		return nil, err
	}

	msg, err := RenderSource(src, params)
	if err != nil {
		var cfgErr *notification.ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Type = notifType
		}
		return nil, err
	}

	return msg, nil
}

// RenderSource evaluates conditional sections and then substitutes variables in each
// field of src. The html field also has its style placeholders filled in between the
// two passes, and its substituted values are HTML-escaped.
// The result depends only on src and params.
func RenderSource(src notification.TemplateSource, params notification.Parameters) (*notification.RenderedMessage, error) {
	subject, err := renderField(fieldSubject, src.Subject, params, false)
	if err != nil {
		return nil, err
	}

	text, err := renderField(fieldText, src.Text, params, false)
	if err != nil {
		return nil, err
	}

	html, err := renderField(fieldHTML, src.HTML, params, true)
	if err != nil {
		return nil, err
	}

	return &notification.RenderedMessage{
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}

func renderField(field, tmpl string, params notification.Parameters, isHTML bool) (string, error) {
	segs, err := parseSections(tmpl)
	if err != nil {
		var cfgErr *notification.ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Field = field
		}
		return "", err
	}

	body := evaluateSections(segs, params)
	if isHTML {
		body = applyStyles(body)
	}

	return substitute(body, params, isHTML), nil
}

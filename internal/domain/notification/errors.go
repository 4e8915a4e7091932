package notification

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a template that cannot be rendered because its
// conditional markers are malformed. It points at a deployment problem, not a
// transient delivery failure.
type ConfigurationError struct {
	Type   NotificationType
	Field  string
	Offset int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("template %s: %s at offset %d", e.Field, e.Reason, e.Offset)
	}
	return fmt.Sprintf("template %s.%s: %s at offset %d", e.Type, e.Field, e.Reason, e.Offset)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

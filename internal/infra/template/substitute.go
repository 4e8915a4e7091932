package template

import (
	"html"
	"regexp"
	"strings"

	"contactdesk/internal/domain/notification"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	stylePattern       = regexp.MustCompile(`\{style:([a-z_]+)\}`)
)

// styles holds the inline CSS used by the html templates. Never user-controlled.
var styles = map[string]string{
	"container": "font-family: sans-serif; max-width: 600px; margin: 0 auto; color: #222;",
	"heading":   "font-size: 1.3em; margin: 0 0 1em;",
	"table":     "border-collapse: collapse; width: 100%; margin: 1.5em 0;",
	"label":     "text-align: left; white-space: nowrap; padding: 6px 12px 6px 0; color: #555; vertical-align: top;",
	"value":     "padding: 6px 0; vertical-align: top;",
	"message":   "background: #f6f6f6; padding: 12px; border-radius: 4px; line-height: 1.6;",
	"divider":   "margin: 2em 0; border: none; border-top: 1px solid #ddd;",
	"footer":    "color: #666; font-size: 0.9em;",
}

// applyStyles replaces {style:name} placeholders. Unknown names are left as written.
func applyStyles(body string) string {
	return stylePattern.ReplaceAllStringFunc(body, func(match string) string {
		name := match[len("{style:") : len(match)-1]
		if css, ok := styles[name]; ok {
			return css
		}
		return match
	})
}

// substitute replaces {field} placeholders in a single pass. Substituted values
// are never scanned again, so a value containing "{name}" stays literal.
func substitute(body string, params notification.Parameters, escape bool) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		value := lookupValue(match[1:len(match)-1], params)
		if escape {
			return escapeHTML(value)
		}
		return value
	})
}

// lookupValue decides what a placeholder becomes: an optional field submitted
// empty reads NotProvided, and any name missing from params reads "".
func lookupValue(name string, params notification.Parameters) string {
	value, set := params[name]
	switch {
	case set && value == "" && notification.IsOptionalField(name):
		return notification.NotProvided
	default:
		return value
	}
}

func escapeHTML(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

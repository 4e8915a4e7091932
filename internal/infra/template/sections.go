package template

import (
	"fmt"
	"regexp"
	"strings"

	"contactdesk/internal/domain/notification"
)

// A conditional section is written {if:key}...{/if:key}. Sections may not nest.
var (
	markerPattern = regexp.MustCompile(`\{(/?)if:([A-Za-z_][A-Za-z0-9_]*)\}`)
	markerPrefix  = regexp.MustCompile(`\{/?if:`)
)

// segment is either literal text (key == "") or the body of a conditional section.
type segment struct {
	key  string
	text string
}

// parseSections splits src into literal and conditional segments.
// Malformed markers produce a *notification.ConfigurationError with Offset set.
func parseSections(src string) ([]segment, error) {
	matches := markerPattern.FindAllStringSubmatchIndex(src, -1)

	// Every "{if:" or "{/if:" must start a well-formed marker.
	wellFormed := make(map[int]bool, len(matches))
	for _, m := range matches {
		wellFormed[m[0]] = true
	}
	for _, loc := range markerPrefix.FindAllStringIndex(src, -1) {
		if !wellFormed[loc[0]] {
			return nil, &notification.ConfigurationError{
				Offset: loc[0],
				Reason: "malformed conditional marker",
			}
		}
	}

	var (
		segs   []segment
		pos    int
		open   string
		openAt int
	)

	for _, m := range matches {
		closing := m[3] > m[2]
		key := src[m[4]:m[5]]

		if !closing {
			if open != "" {
				return nil, &notification.ConfigurationError{
					Offset: m[0],
					Reason: fmt.Sprintf("conditional %q opened inside %q", key, open),
				}
			}
			if m[0] > pos {
				segs = append(segs, segment{text: src[pos:m[0]]})
			}
			open, openAt, pos = key, m[0], m[1]
			continue
		}

		switch {
		case open == "":
			return nil, &notification.ConfigurationError{
				Offset: m[0],
				Reason: fmt.Sprintf("end of conditional %q without a matching begin", key),
			}
		case key != open:
			return nil, &notification.ConfigurationError{
				Offset: m[0],
				Reason: fmt.Sprintf("end of conditional %q while %q is open", key, open),
			}
		}

		segs = append(segs, segment{key: open, text: src[pos:m[0]]})
		open, pos = "", m[1]
	}

	if open != "" {
		return nil, &notification.ConfigurationError{
			Offset: openAt,
			Reason: fmt.Sprintf("conditional %q is never closed", open),
		}
	}

	if pos < len(src) {
		segs = append(segs, segment{text: src[pos:]})
	}

	return segs, nil
}

// evaluateSections keeps a conditional body only when its key is present and non-empty.
func evaluateSections(segs []segment, params notification.Parameters) string {
	var b strings.Builder
	for _, s := range segs {
		if s.key != "" && !params.Present(s.key) {
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}

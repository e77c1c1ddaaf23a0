package fetch

import (
	"regexp"
	"strings"

	"steeple/internal/services"
)

// sourceIDPatterns are tried in order; the first match wins. Path-segment
// forms come before the query-parameter form, with a bare identifier as the
// final fallback.
var sourceIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{10,})$`),
}

// ExtractSourceID pulls the storage file identifier out of a source link.
func ExtractSourceID(link string) (string, error) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return "", services.Wrap(services.ErrInvalidReference, "fetch", "extract id", "empty source link", nil)
	}
	for _, pattern := range sourceIDPatterns {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			return match[1], nil
		}
	}
	return "", services.Wrap(services.ErrInvalidReference, "fetch", "extract id", "no matcher recognized "+trimmed, nil)
}

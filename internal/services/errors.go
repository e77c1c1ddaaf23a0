package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReference marks a source link that no matcher could parse.
	ErrInvalidReference = errors.New("invalid source reference")
	// ErrFetchExhausted marks a fetch where every transport candidate failed.
	ErrFetchExhausted = errors.New("fetch candidates exhausted")
	// ErrValidation marks a post-fetch size, type, or content mismatch.
	ErrValidation = errors.New("validation error")
	// ErrPublishRejected marks a publish call the target platform refused.
	ErrPublishRejected = errors.New("publish rejected")
	// ErrStoreUnavailable marks a catalog I/O failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrStoreUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

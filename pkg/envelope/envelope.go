// Package envelope defines the uniform request/response wrapper every party
// operation is exchanged in.
//
// Success: {"status":"SUCCESS","message":"...","partyData":{...}}
// Failure: {"status":"FAIL","errorDescription":"..."}
//
// errorDescription is trimmed and bounded; an empty description is replaced by
// DefaultErrorMessage so the field is never blank.
package envelope

import (
	"strings"
	"unicode/utf8"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"

	DefaultMaxErrorLength = 500
	DefaultErrorMessage   = "An unexpected error occurred"

	ellipsis = "..."
)

// Request carries an inbound payload.
type Request[T any] struct {
	PartyData *T `json:"partyData"`
}

// Response carries the outcome of one operation.
type Response[T any] struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
	PartyData        *T     `json:"partyData,omitempty"`
}

// IsSuccess reports whether the envelope carries a successful outcome.
func (r Response[T]) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// Success wraps a payload. message may be empty.
func Success[T any](data *T, message string) Response[T] {
	return Response[T]{
		Status:    StatusSuccess,
		Message:   message,
		PartyData: data,
	}
}

// Fail wraps an error description, bounded to maxLen characters.
func Fail[T any](description string, maxLen int) Response[T] {
	return Response[T]{
		Status:           StatusFail,
		ErrorDescription: Truncate(description, maxLen),
	}
}

// Truncate trims message and bounds it to maxLen characters. Longer messages
// keep their first maxLen-3 characters followed by "...". Length is counted in
// characters, not bytes. A maxLen too small to hold the ellipsis falls back to
// DefaultMaxErrorLength.
func Truncate(message string, maxLen int) string {
	if maxLen <= len(ellipsis) {
		maxLen = DefaultMaxErrorLength
	}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return DefaultErrorMessage
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

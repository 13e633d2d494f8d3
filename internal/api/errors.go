package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a normalized API error.
type Kind int

const (
	// KindNetwork means no response was received at all.
	KindNetwork Kind = iota + 1
	// KindValidation means the server returned a structured errors map.
	KindValidation
	// KindApplication covers every other non-2xx response.
	KindApplication
	// KindDecode means the response did not match the envelope contract.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindApplication:
		return "application"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is the normalized form every service-layer failure takes.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	// Details maps field names to their validation messages.
	Details map[string][]string
	// Raw is the unparsed response body, kept for diagnostics.
	Raw []byte

	cause error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Details) > 0 {
		// concatenate field messages into a single display string, the way
		// the UI flattens the errors map
		fields := make([]string, 0, len(e.Details))
		for f := range e.Details {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(e.Details))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Details[f], "; ")))
		}
		return strings.Join(parts, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s error (status %d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

// AsError extracts a normalized *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a normalized API error with the given
// HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == status
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "no response from server", cause: err}
}

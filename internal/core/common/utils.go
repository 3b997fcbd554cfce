package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON unmarshals a collaborator response body into a type T.
// The error carries a truncated copy of the body for diagnostics.
func ParseJSON[T any](body []byte) (T, error) {
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, Truncate(string(body), 512))
	}
	return result, nil
}

// ErrorMessage extracts a human readable message from an error payload. It
// understands {"message": ...} and {"error": ...}; anything else is returned
// trimmed as-is.
func ErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return Truncate(strings.TrimSpace(string(body)), 512)
}

// Truncate shortens s to at most n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

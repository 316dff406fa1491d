package koola

import (
	"fmt"
	"strings"
)

// CodeValidationError is the envelope code the API uses when request fields
// failed validation. Responses with this code carry per-field issues.
const CodeValidationError = "VALIDATION_ERROR"

// ErrorEnvelope is the structured error body every non-2xx API response
// carries.
type ErrorEnvelope struct {
	Error struct {
		Code    string        `json:"code"`
		Message string        `json:"message"`
		Details *ErrorDetails `json:"details,omitempty"`
	} `json:"error"`
}

// ErrorDetails holds optional field-level validation issues.
type ErrorDetails struct {
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// ValidationIssue describes a single failed field.
type ValidationIssue struct {
	Path     []string `json:"path"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
}

// APIError is returned for any non-2xx response that is not an authorization
// failure. Message is the human-readable text shown to the admin user; for
// validation failures it is the multi-line itemized rendering, never a
// generic "request failed".
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Issues     []ValidationIssue
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// newAPIError builds an APIError from a decoded envelope, rendering
// validation issues into the message.
func newAPIError(statusCode int, envelope *ErrorEnvelope) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
	if envelope.Error.Details != nil && len(envelope.Error.Details.Issues) > 0 {
		apiErr.Issues = envelope.Error.Details.Issues
		apiErr.Message = renderIssues(envelope.Error.Message, apiErr.Issues)
	}
	return apiErr
}

// renderIssues formats field-level validation issues into one readable
// multi-line message: a bullet per field, with an expected/received sub-block
// when the API reported one.
func renderIssues(message string, issues []ValidationIssue) string {
	var b strings.Builder
	if message == "" {
		message = "Validation failed"
	}
	b.WriteString(message)
	for _, issue := range issues {
		b.WriteString("\n• ")
		if len(issue.Path) > 0 {
			b.WriteString(strings.Join(issue.Path, "."))
			b.WriteString(": ")
		}
		b.WriteString(issue.Message)
		if issue.Expected != "" || issue.Received != "" {
			b.WriteString(fmt.Sprintf("\n  Expected: %s, Received: %s", issue.Expected, issue.Received))
		}
	}
	return b.String()
}

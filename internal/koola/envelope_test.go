package koola

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	t.Run("renders validation issues as bulleted lines", func(t *testing.T) {
		envelope := &ErrorEnvelope{}
		envelope.Error.Code = CodeValidationError
		envelope.Error.Message = "Request validation failed"
		envelope.Error.Details = &ErrorDetails{
			Issues: []ValidationIssue{
				{
					Path:     []string{"contact", "email"},
					Message:  "Invalid email",
					Expected: "string",
					Received: "undefined",
				},
				{
					Path:    []string{"name"},
					Message: "Required",
				},
			},
		}

		apiErr := newAPIError(http.StatusBadRequest, envelope)

		assert.Equal(t, CodeValidationError, apiErr.Code)
		assert.Len(t, apiErr.Issues, 2)

		msg := apiErr.Error()
		assert.Contains(t, msg, "• contact.email: Invalid email")
		assert.Contains(t, msg, "Expected: string, Received: undefined")
		assert.Contains(t, msg, "• name: Required")
		assert.Equal(t, 2, strings.Count(msg, "• "), "one bullet per issue")
		assert.Equal(t, 1, strings.Count(msg, "Expected:"),
			"only the issue reporting expected/received gets the sub-block")
	})

	t.Run("plain errors keep the server message", func(t *testing.T) {
		envelope := &ErrorEnvelope{}
		envelope.Error.Code = "NOT_FOUND"
		envelope.Error.Message = "Page not found"

		apiErr := newAPIError(http.StatusNotFound, envelope)

		assert.Equal(t, "Page not found", apiErr.Error())
		assert.Empty(t, apiErr.Issues)
	})

	t.Run("message falls back to the status code", func(t *testing.T) {
		apiErr := &APIError{StatusCode: http.StatusBadGateway}
		assert.Equal(t, "request failed with status 502", apiErr.Error())
	})
}

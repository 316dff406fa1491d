package auth

import "errors"

// ErrNoUsableRefreshToken is returned by Refresh when no refresh token is
// stored or the stored one is itself expired. The session is cleared before
// this is returned; no network call is made.
var ErrNoUsableRefreshToken = errors.New("no usable refresh token")

// ErrRefreshRejected is returned when the refresh endpoint rejected the
// refresh token or the call failed. A failed refresh always ends the
// session.
var ErrRefreshRejected = errors.New("refresh rejected")

// LoginRejectedError carries the server's login rejection verbatim so the UI
// can show it (e.g. bad credentials). The stored session, if any, is
// unaffected.
type LoginRejectedError struct {
	StatusCode int
	Message    string
}

func (e *LoginRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "login rejected"
}

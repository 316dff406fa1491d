package koola

import "errors"

// ErrNotAuthenticated is returned when a request is attempted with no stored
// session. No network call is made; the caller should send the user to the
// login surface.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrSessionExpired is returned when a refresh attempt failed, or when the
// retried request still failed after a successful refresh. The session has
// been cleared by the time this is returned.
var ErrSessionExpired = errors.New("session expired")

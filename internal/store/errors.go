package store

import "errors"

// ErrIncompleteSession is returned by Save when the session is missing a
// token. Persisting a partial session would break the all-or-nothing
// contract every consumer relies on.
var ErrIncompleteSession = errors.New("session is missing a token")

// ErrNoSession is returned by SetAccessToken when there is no session to
// update.
var ErrNoSession = errors.New("no session in store")

package api

import "errors"

// Sentinel errors exposed to callers; match with errors.Is. Wrapped forms
// carry the server-supplied message where one was returned.
var (
	// ErrInvalidCredentials: the API explicitly rejected the login/signup
	// payload (wrong password, duplicate email, revoked account).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNetwork: the request never completed at the transport level.
	ErrNetwork = errors.New("server unreachable")

	// ErrServer: the API was reachable but answered with a failure status
	// other than a credential rejection.
	ErrServer = errors.New("server error")
)

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for any failed login. It does not
	// tell an unknown identifier apart from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, badly signed, expired or
	// orphaned tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)

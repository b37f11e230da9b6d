package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid NIP or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

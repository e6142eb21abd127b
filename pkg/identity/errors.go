package identity

import "errors"

var (
	ErrUnauthorized        = errors.New("identity: unauthorized")
	ErrForbidden           = errors.New("identity: forbidden")
	ErrMissingToken        = errors.New("identity: missing bearer token")
	ErrInvalidToken        = errors.New("identity: invalid token")
	ErrMissingSigningKey   = errors.New("identity: signing key is required")
	ErrInvalidSubjectClaim = errors.New("identity: subject claim is not a valid id")
)

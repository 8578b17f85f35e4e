package errors

import "errors"

var (
	ErrMalformedToken = errors.New("token is not a structurally valid JWT")

	ErrTokenExpired = errors.New("token has expired")

	ErrInvalidRole = errors.New("role cannot be mapped to Admin, Patient or Doctor")

	ErrMissingUserID = errors.New("token carries no user id")

	ErrRoleMismatch = errors.New("account role is not allowed for this login")

	ErrMissingToken = errors.New("login response carries no token")
)

// Package common defines shared constants and sentinel errors used across
// the transport, service and repository layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Access token errors.
	ErrMissingToken = errors.New("please provide your access token")
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("token expired")

	// Account errors.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already taken")

	// Password reset errors.
	ErrInvalidResetHash = errors.New("invalid reset hash")
	ErrExpiredResetHash = errors.New("reset hash expired")
)

// kinds is ordered: the first sentinel matched by errors.Is names the kind.
var kinds = []struct {
	err  error
	name string
}{
	{ErrMissingToken, "MissingToken"},
	{ErrInvalidToken, "InvalidToken"},
	{ErrTokenExpired, "ExpiredToken"},
	{ErrInvalidCredentials, "InvalidCredentials"},
	{ErrEmailTaken, "EmailTaken"},
	{ErrInvalidResetHash, "InvalidResetHash"},
	{ErrExpiredResetHash, "ExpiredResetHash"},
	{ErrorNotFound, "NotFound"},
	{ErrorValidation, "Validation"},
}

// Kind returns the taxonomy name of err, "" for nil and "Internal" for
// anything that is not one of the sentinels above.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

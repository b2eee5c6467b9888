package domain

import (
	"errors"
	"fmt"
)

// AuthError carries the backend's own message for failed credentials so it
// can be surfaced to the user verbatim.
type AuthError struct {
	Msg string
	Err error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication failed"
}

func (e AuthError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// UnavailableError covers transport failures and non-success upstream
// responses. Always recoverable by retrying.
type UnavailableError struct {
	Op  string
	Err error
}

func (e UnavailableError) Error() string {
	if e.Op == "" {
		return "upstream unavailable"
	}
	return fmt.Sprintf("%s: upstream unavailable", e.Op)
}

func (e UnavailableError) Unwrap() error { return e.Err }

// PermissionDeniedError means notification permission is denied. Terminal
// until the user changes browser settings out-of-band; never retried
// automatically.
type PermissionDeniedError struct {
	Msg string
}

func (e PermissionDeniedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "notification permission denied"
}

// ConfigError is an unrecoverable configuration failure, e.g. a malformed
// VAPID key. It disables the owning subsystem, not the whole process.
type ConfigError struct {
	Name string
	Err  error
}

func (e ConfigError) Error() string {
	if e.Name == "" {
		return "configuration error"
	}
	return fmt.Sprintf("configuration error: %s", e.Name)
}

func (e ConfigError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

func IsPermissionDenied(err error) bool {
	var target PermissionDeniedError
	return errors.As(err, &target)
}

func IsConfig(err error) bool {
	var target ConfigError
	return errors.As(err, &target)
}

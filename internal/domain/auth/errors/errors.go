package errors

import (
	"errors"
	"fmt"
)

// Kinds. Every error returned by the app layer matches exactly one of them.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
)

var (
	ErrUserNotFound              = newKind(ErrInvalidArgument, "user not found")
	ErrUserAlreadyExists         = newKind(ErrInvalidArgument, "user already exists")
	ErrPasswordConfirmation      = newKind(ErrInvalidArgument, "password and password confirmation must be the same")
	ErrPasswordMismatch          = newKind(ErrInvalidArgument, "password does not match")
	ErrWeakPassword              = newKind(ErrInvalidArgument, "password is not valid")
	ErrRefreshTokenAlreadyExists = newKind(ErrInvalidArgument, "refresh token already exists")
	ErrRoleNotAllowed            = newKind(ErrInvalidArgument, "role is not allowed")
	ErrEmptyUpdate               = newKind(ErrInvalidArgument, "at least one field must be filled")
	ErrInvalidUserID             = newKind(ErrInvalidArgument, "user id is invalid")
	ErrEmptyPage                 = newKind(ErrInvalidArgument, "users not found")

	ErrInvalidAccessToken  = newKind(ErrUnauthorized, "invalid access token provided")
	ErrInvalidRefreshToken = newKind(ErrUnauthorized, "invalid refresh token provided")

	ErrInsufficientRole = newKind(ErrForbidden, "insufficient role")

	ErrRecordNotFound = newKind(ErrNotFound, "record not found")
	ErrAlreadyExists  = newKind(ErrInvalidArgument, "already exists")
)

// Error is a classified error. Message and At are diagnostics for the server
// log, the client only ever sees the status derived from Kind.
type Error struct {
	kind  error
	msg   string
	at    string
	cause error
}

func newKind(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	s := e.msg
	if e.at != "" {
		s = e.at + ": " + s
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Is matches copies produced by At against the package-level values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.msg == e.msg
}

// At returns a copy of e tagged with the location that raised it.
func (e *Error) At(location string) *Error {
	c := *e
	c.at = location
	return &c
}

func NewInvalidArgument(msg string) error {
	return &Error{kind: ErrInvalidArgument, msg: msg}
}

func WrapInternal(err error, location string) error {
	return &Error{kind: ErrInternal, msg: "internal error", at: location, cause: err}
}

// Location returns the tag of the outermost classified error in the chain.
func Location(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.at
	}
	return ""
}

// Message returns a log-friendly message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", e.msg, e.cause)
		}
		return e.msg
	}
	return err.Error()
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrUserAlreadyExists)
}

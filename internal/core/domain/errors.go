package domain

import (
	"errors"
	"fmt"
)

// Repository and token level sentinels. These never reach a client verbatim.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrLockLost     = errors.New("lock expired before release")
)

// ErrorKind tags the expected failure outcomes of the API.
type ErrorKind int

const (
	KindEmailNotRegistered ErrorKind = iota + 1
	KindWrongPassword
	KindEmailAlreadyTaken
	KindRecordNotFound
	KindValidation
	KindCarAlreadyRented
	KindInsufficientAccess
)

// Error is the failure variant returned by services for expected outcomes.
// Handlers switch on Kind to pick a status code; anything that is not an
// *Error is an infrastructure fault and goes to the HTTP error handler untouched.
type Error struct {
	Kind    ErrorKind
	Name    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match on kind, so callers can compare against a template
// such as &Error{Kind: KindWrongPassword}.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func EmailNotRegistered(email string) *Error {
	return &Error{
		Kind:    KindEmailNotRegistered,
		Name:    "EmailNotRegisteredError",
		Message: fmt.Sprintf("%s is not registered!", email),
		Details: map[string]any{"email": email},
	}
}

func WrongPassword() *Error {
	return &Error{
		Kind:    KindWrongPassword,
		Name:    "WrongPasswordError",
		Message: "Password is not correct!",
	}
}

func EmailAlreadyTaken(email string) *Error {
	return &Error{
		Kind:    KindEmailAlreadyTaken,
		Name:    "EmailAlreadyTakenError",
		Message: fmt.Sprintf("%s is already taken!", email),
		Details: map[string]any{"email": email},
	}
}

// RecordNotFound reports a missing entity; kind is the entity name, e.g. "User".
func RecordNotFound(kind string) *Error {
	return &Error{
		Kind:    KindRecordNotFound,
		Name:    "RecordNotFoundError",
		Message: fmt.Sprintf("%s not found!", kind),
		Details: map[string]any{"kind": kind},
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Name:    "ValidationError",
		Message: message,
	}
}

func CarAlreadyRented(carID uint) *Error {
	return &Error{
		Kind:    KindCarAlreadyRented,
		Name:    "CarAlreadyRentedError",
		Message: fmt.Sprintf("Car %d is already rented in that period!", carID),
		Details: map[string]any{"carId": carID},
	}
}

func InsufficientAccess(role string) *Error {
	return &Error{
		Kind:    KindInsufficientAccess,
		Name:    "InsufficientAccessError",
		Message: "Access forbidden!",
		Details: map[string]any{"role": role},
	}
}

// AsError unwraps err into a domain failure when it is one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

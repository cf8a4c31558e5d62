package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of where it happened.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindStore
	KindInvalidTransition
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindStore:
		return "STORE_ERROR"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	}
	return "UNKNOWN"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Message too when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrStore              = &Error{Kind: KindStore}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrInvalidCredentials = &Error{Kind: KindValidation, Message: "Invalid credentials"}
	ErrUserExists         = &Error{Kind: KindConflict, Message: "User already exists"}
)

const (
	MsgIssueNotFound   = "Issue not found"
	MsgProjectNotFound = "Project not found"
	MsgCommentNotFound = "Comment not found"
	MsgUserNotFound    = "User not found"
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Store wraps an unclassified persistence failure. The raw message is kept.
func Store(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Message: err.Error(), Err: err}
}

func InvalidTransition(from, to Status) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("transition %s -> %s is not allowed", from, to),
	}
}

// KindOf returns the Kind of err, or KindStore for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Wire codes sent back to the originating connection inside an error event.
const (
	CodeValidation  = "validation"
	CodePersistence = "persistence"
	CodeProtocol    = "protocol"
	CodeInternal    = "internal"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Validation
	ErrValidation     = fmt.Errorf("validation failed")
	ErrEmptyName      = fmt.Errorf("%w: display name is required", ErrValidation)
	ErrInvalidName    = fmt.Errorf("%w: display name is invalid", ErrValidation)
	ErrEmptyText      = fmt.Errorf("%w: message text is empty", ErrValidation)
	ErrContentTooLong = fmt.Errorf("%w: message text is too long", ErrValidation)
	ErrEmptyRoomName  = fmt.Errorf("%w: room name is required", ErrValidation)
	ErrUnknownRoom    = fmt.Errorf("%w: room does not exist", ErrValidation)

	// Persistence
	ErrPersistence = fmt.Errorf("message could not be delivered")

	// Protocol misuse
	ErrProtocol       = fmt.Errorf("protocol misuse")
	ErrNotRegistered  = fmt.Errorf("%w: connection has no display name", ErrProtocol)
	ErrUnknownEvent   = fmt.Errorf("%w: unknown event", ErrProtocol)
	ErrMalformedFrame = fmt.Errorf("%w: malformed frame", ErrProtocol)

	ErrSessionClosed = fmt.Errorf("session is closed")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Code maps an error to the wire code the client receives.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrValidation):
		return CodeValidation
	case Is(err, ErrPersistence):
		return CodePersistence
	case Is(err, ErrProtocol):
		return CodeProtocol
	default:
		return CodeInternal
	}
}

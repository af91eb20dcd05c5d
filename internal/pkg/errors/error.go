package errors

import (
	"errors"
	"fmt"
)

// AppError is a failure with a business code and the text shown to the user
type AppError struct {
	Code    int    // Business error code
	Message string // Title from the code table
	Details string // Sentence appended to the title
	Err     error  // Underlying cause, never shown to the user
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.UserMessage())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage renders the error the way it is shown in the transcript
func (e *AppError) UserMessage() string {
	return FormatError(e.Code, e.Details)
}

// New creates an AppError without a cause
func New(code int, details ...string) *AppError {
	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Details: firstDetail(details),
	}
}

// Wrap attaches a code to err. An AppError already in the chain keeps its
// code; a copy is returned when new details are supplied.
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if detail := firstDetail(details); detail != "" {
			copied := *appErr
			copied.Details = detail
			return &copied
		}
		return appErr
	}

	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Details: firstDetail(details),
		Err:     err,
	}
}

// Is reports whether err carries the given code
func Is(err error, code int) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first AppError in the chain, ErrInternal otherwise
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// UserMessage returns the user-facing text for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return err.Error()
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}

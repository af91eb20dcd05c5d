package errors

import "fmt"

// Code represents an error code with its user-facing title
type Code struct {
	Code    int    // Business error code
	Message string // Error message shown to the user
}

// Error codes for different modules
const (
	// Common errors (1000-1999)
	ErrInternal      = 1000
	ErrInvalidParams = 1001
	ErrStorage       = 1002

	// Provider errors (2000-2999)
	ErrAuthentication         = 2000
	ErrQuotaExceeded          = 2001
	ErrModelNotFound          = 2002
	ErrProviderFailed         = 2003
	ErrProviderNotImplemented = 2004
	ErrEmptyResponse          = 2005

	// Conversation errors (3000-3999)
	ErrBusy = 3000
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	ErrInternal:      {ErrInternal, "Internal error"},
	ErrInvalidParams: {ErrInvalidParams, "Invalid parameters"},
	ErrStorage:       {ErrStorage, "Storage operation failed"},

	ErrAuthentication:         {ErrAuthentication, "Authentication Error"},
	ErrQuotaExceeded:          {ErrQuotaExceeded, "Quota Exceeded"},
	ErrModelNotFound:          {ErrModelNotFound, "Model Not Found"},
	ErrProviderFailed:         {ErrProviderFailed, "Oops! I ran into a hiccup. Can you try asking that again?"},
	ErrProviderNotImplemented: {ErrProviderNotImplemented, "Provider Not Available"},
	ErrEmptyResponse:          {ErrEmptyResponse, "Empty Response"},

	ErrBusy: {ErrBusy, "A response is already in progress"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternal]
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsProviderError checks if the code belongs to the provider range
func IsProviderError(code int) bool {
	return code >= 2000 && code < 3000
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}

package errors

import (
	"strings"
)

type ErrorKind string

const (
	ErrorKindOffline  ErrorKind = "offline"
	ErrorKindHTTP     ErrorKind = "http"
	ErrorKindNotFound ErrorKind = "not-found"
	ErrorKindConflict ErrorKind = "conflict"
	ErrorKindOther    ErrorKind = "other"
)

type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Hint    string // User-friendly suggestion
	Raw     error
}

func (e ClassifiedError) Error() string {
	return e.Message
}

func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") || strings.Contains(msg, "econnrefused") || strings.Contains(msg, "no such host"):
		return ClassifiedError{
			Kind:    ErrorKindOffline,
			Message: err.Error(),
			Hint:    "Is the toolscoped daemon running? Check with 'toolscope status' or start it with 'toolscoped'",
			Raw:     err,
		}
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "The requested resource was not found. Check the tool path or source name.",
			Raw:     err,
		}
	case strings.Contains(msg, "409") || strings.Contains(msg, "already exists") || strings.Contains(msg, "conflict"):
		return ClassifiedError{
			Kind:    ErrorKindConflict,
			Message: err.Error(),
			Hint:    "A source with that name already exists. Remove it first or pick another name.",
			Raw:     err,
		}
	case strings.Contains(msg, "http"):
		return ClassifiedError{
			Kind:    ErrorKindHTTP,
			Message: err.Error(),
			Hint:    "An HTTP error occurred during communication with the daemon.",
			Raw:     err,
		}
	default:
		return ClassifiedError{
			Kind:    ErrorKindOther,
			Message: err.Error(),
			Hint:    "An unexpected error occurred.",
			Raw:     err,
		}
	}
}

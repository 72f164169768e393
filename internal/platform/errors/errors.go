package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfig     Kind = "config"
	KindTransport  Kind = "transport"
	KindAudio      Kind = "audio"
	KindTranscribe Kind = "transcribe"
	KindTranslate  Kind = "translate"
	KindBootstrap  Kind = "bootstrap"
	KindPlatform   Kind = "platform"
	KindUnknown    Kind = "unknown"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// As delegates to the standard library so callers can keep a single
// errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// HTTPStatus maps an error chain onto the two response classes the API
// exposes: client-input kinds become 400, external-backend kinds become 502,
// everything else a plain 500.
func HTTPStatus(err error) int {
	var typed *Error
	if !errors.As(err, &typed) {
		return http.StatusInternalServerError
	}
	switch typed.Kind {
	case KindTransport, KindAudio:
		return http.StatusBadRequest
	case KindTranscribe, KindTranslate:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

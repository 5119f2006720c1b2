// Package apperr defines the error kinds surfaced by the storefront and
// how each of them maps onto an HTTP response.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Authentication Kind = "authentication"
	Network        Kind = "network"
	NotFound       Kind = "not_found"
	Validation     Kind = "validation"
	Upload         Kind = "upload"
	Save           Kind = "save"
	Internal       Kind = "internal"
)

const defaultPublicMsg = "Terjadi kesalahan yang tidak terduga."

// AppError carries a kind, a message that is safe to show to the user and
// the underlying cause.
type AppError struct {
	Kind      Kind
	PublicMsg string
	Fields    map[string]string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

func AuthenticationErr(reason string, err error) *AppError {
	return &AppError{Kind: Authentication, PublicMsg: reason, Err: err}
}

func NetworkErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Network, PublicMsg: publicMsg, Err: err}
}

func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}

func ValidationErr(publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: Validation, PublicMsg: publicMsg, Fields: fields}
}

func UploadErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Upload, PublicMsg: publicMsg, Err: err}
}

func SaveErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Save, PublicMsg: publicMsg, Err: err}
}

// Wrap turns an unexpected error into an Internal AppError. Errors that
// already are AppErrors are returned as is.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	return &AppError{Kind: Internal, PublicMsg: defaultPublicMsg, Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Validation:
			return http.StatusUnprocessableEntity
		case Authentication:
			return http.StatusUnauthorized
		case NotFound:
			return http.StatusNotFound
		case Network, Upload:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return defaultPublicMsg
}

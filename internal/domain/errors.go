package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	GenericErrorMessage   = "An error occurred"
	TransportErrorMessage = "Network error. Please check your connection."
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAuth indica un OTP incorrecto o expirado.
	ErrAuth = errors.New("authentication failed")
	// ErrLocationUnavailable es el sentinel de LocationUnavailableError.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrRejected es el sentinel de RejectedError.
	ErrRejected = errors.New("request rejected")
)

// TransportError indica que no se recibio respuesta del servidor.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return TransportErrorMessage
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError es una respuesta no-2xx con el mensaje extraido del cuerpo.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return GenericErrorMessage
	}
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// RejectedError es una respuesta 2xx cuyo sobre trae success=false. No
// lleva status porque el transporte fue correcto.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return GenericErrorMessage
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// AuthError es el rechazo de un OTP por parte del servidor.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "Login failed"
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// ValidationError es un error local detectado antes de cualquier llamada de red.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LocationUnavailableError cubre permiso denegado o ausencia de fix.
type LocationUnavailableError struct {
	Reason string
	Err    error
}

func (e *LocationUnavailableError) Error() string {
	if e.Reason == "" {
		return "Unable to get your location. Please enter your address manually."
	}
	return e.Reason
}

func (e *LocationUnavailableError) Unwrap() error {
	return e.Err
}

func (e *LocationUnavailableError) Is(target error) bool {
	return target == ErrLocationUnavailable
}

// IsValidation informa si err es (o envuelve) un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport informa si err es (o envuelve) un TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ValidationErrors agrupa los errores de campo de un formulario.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Field devuelve el mensaje asociado al campo, o "".
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, e := range v {
		out = append(out, e)
	}
	return out
}

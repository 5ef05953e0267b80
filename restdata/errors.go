// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/diffeo/go-openeo/openeo"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// HTTPStatus maps an error to the HTTP status code a REST service
// should answer with.  Errors that know their own status (the wrapper
// errors above, and ErrUnsupportedMediaType) take precedence; the
// openeo package's errors map according to the protocol's error
// table; anything else is a 500.
func HTTPStatus(err error) int {
	if es, ok := err.(ErrorStatus); ok {
		return es.HTTPStatus()
	}
	switch err {
	case openeo.ErrProcessGraphMissing,
		openeo.ErrJobNotFinished,
		openeo.ErrJobNotStarted:
		return http.StatusBadRequest
	case openeo.ErrAuthRequired:
		return http.StatusUnauthorized
	case openeo.ErrAuthSchemeInvalid,
		openeo.ErrCredentialsInvalid,
		openeo.ErrTokenInvalid:
		return http.StatusForbidden
	}
	switch err.(type) {
	case openeo.ErrNoSuchCollection,
		openeo.ErrNoSuchJob,
		openeo.ErrNoSuchService:
		return http.StatusNotFound
	case openeo.ErrProcessUnsupported,
		openeo.ErrServiceUnsupported:
		return http.StatusBadRequest
	case openeo.ErrVersionUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// ErrorResponse can be a response to any method, generally accompanied
// by a failing HTTP status code.
type ErrorResponse struct {
	// Code is a stable machine-readable error code, e.g.
	// "JobNotFound".  Errors with no more specific mapping are
	// reported as "Internal".
	Code string `json:"code"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`
}

// FromError populates an ErrorResponse based on an error value.  This
// remaps the well-known openeo errors to specific e.Code values;
// anything unrecognized becomes "Internal".
func (e *ErrorResponse) FromError(err error) {
	e.Code = "Internal"
	e.Message = err.Error()
	switch err {
	case openeo.ErrProcessGraphMissing:
		e.Code = "ProcessGraphMissing"
	case openeo.ErrJobNotFinished:
		e.Code = "JobNotFinished"
	case openeo.ErrJobNotStarted:
		e.Code = "JobNotStarted"
	case openeo.ErrAuthRequired:
		e.Code = "AuthenticationRequired"
	case openeo.ErrAuthSchemeInvalid:
		e.Code = "AuthenticationSchemeInvalid"
	case openeo.ErrCredentialsInvalid:
		e.Code = "CredentialsInvalid"
	case openeo.ErrTokenInvalid:
		e.Code = "TokenInvalid"
	}
	switch et := err.(type) {
	case openeo.ErrNoSuchCollection:
		e.Code = "CollectionNotFound"
	case openeo.ErrNoSuchJob:
		e.Code = "JobNotFound"
	case openeo.ErrNoSuchService:
		e.Code = "ServiceNotFound"
	case openeo.ErrProcessUnsupported:
		e.Code = "ProcessUnsupported"
	case openeo.ErrServiceUnsupported:
		e.Code = "ServiceUnsupported"
	case openeo.ErrVersionUnsupported:
		e.Code = "UnsupportedApiVersion"
	case ErrUnsupportedMediaType:
		e.Code = "UnsupportedMediaType"
	case ErrNotFound:
		// Discard this wrapper and report the embedded error.  If
		// that error has no code of its own, the wrapper still knows
		// the request named something absent.
		e.FromError(et.Err)
		if e.Code == "Internal" {
			e.Code = "NotFound"
		}
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// ToError converts e back to an openeo error, if that is possible.
// Errors whose identity travels only in the message (the NotFound
// family) recover it from the message's quoted portion.  If no
// mapping applies, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	switch e.Code {
	case "ProcessGraphMissing":
		return openeo.ErrProcessGraphMissing
	case "JobNotFinished":
		return openeo.ErrJobNotFinished
	case "JobNotStarted":
		return openeo.ErrJobNotStarted
	case "AuthenticationRequired":
		return openeo.ErrAuthRequired
	case "AuthenticationSchemeInvalid":
		return openeo.ErrAuthSchemeInvalid
	case "CredentialsInvalid":
		return openeo.ErrCredentialsInvalid
	case "TokenInvalid":
		return openeo.ErrTokenInvalid
	case "CollectionNotFound":
		return openeo.ErrNoSuchCollection{ID: quoted(e.Message)}
	case "JobNotFound":
		return openeo.ErrNoSuchJob{ID: quoted(e.Message)}
	case "ServiceNotFound":
		return openeo.ErrNoSuchService{ID: quoted(e.Message)}
	case "ProcessUnsupported":
		return openeo.ErrProcessUnsupported{ID: quoted(e.Message)}
	case "ServiceUnsupported":
		return openeo.ErrServiceUnsupported{Type: quoted(e.Message)}
	case "UnsupportedApiVersion":
		return openeo.ErrVersionUnsupported{Requested: quoted(e.Message)}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  The
// response carries only the code and message; capturing and logging
// the stack trace is the server's business.  Typical use is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Code = "Internal"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
}

// quoted returns the first double-quoted substring of s, without the
// quotes, or "" if there is none.  The identity-carrying error
// messages all embed their identifier %q-style.
func quoted(s string) string {
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(s[i+1:], '"')
	if j < 0 {
		return ""
	}
	return s[i+1 : i+1+j]
}

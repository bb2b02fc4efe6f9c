// Package apperr carries the service error taxonomy: a machine-readable Code,
// the kind it belongs to, and the JSON shape errors are written in.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Code is a machine-readable error code returned to clients.
type Code string

const (
	CodeInternal Code = "INTERNAL"

	// Invalid
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidAction      Code = "INVALID_ACTION"
	CodeSelfInvite         Code = "SELF_INVITE"
	CodeCreatorCannotLeave Code = "CREATOR_CANNOT_LEAVE"

	// Unauthenticated
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"

	// Forbidden
	CodeForbidden       Code = "FORBIDDEN"
	CodeNoPendingInvite Code = "NO_PENDING_INVITE"
	CodeNotCollaborator Code = "NOT_COLLABORATOR"

	// NotFound
	CodeWatchlistNotFound Code = "WATCHLIST_NOT_FOUND"
	CodeUserNotFound      Code = "USER_NOT_FOUND"
	CodeMovieNotFound     Code = "MOVIE_NOT_FOUND"
	CodeReviewNotFound    Code = "REVIEW_NOT_FOUND"

	// Conflict
	CodeAlreadyMember    Code = "ALREADY_MEMBER"
	CodeAlreadyInvited   Code = "ALREADY_INVITED"
	CodeDuplicateEntry   Code = "DUPLICATE_ENTRY"
	CodeEmailTaken       Code = "EMAIL_TAKEN"
	CodeConcurrentUpdate Code = "CONCURRENT_UPDATE"

	// Upstream
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
)

// Kind groups codes into the classes callers react to.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

// Kind maps a code to its class.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidInput, CodeInvalidAction, CodeSelfInvite, CodeCreatorCannotLeave:
		return KindInvalid
	case CodeUnauthenticated, CodeInvalidCredentials:
		return KindUnauthenticated
	case CodeForbidden, CodeNoPendingInvite, CodeNotCollaborator:
		return KindForbidden
	case CodeWatchlistNotFound, CodeUserNotFound, CodeMovieNotFound, CodeReviewNotFound:
		return KindNotFound
	case CodeAlreadyMember, CodeAlreadyInvited, CodeDuplicateEntry, CodeEmailTaken, CodeConcurrentUpdate:
		return KindConflict
	case CodeUpstreamUnavailable:
		return KindUpstream
	default:
		return KindInternal
	}
}

// HTTPStatus maps a code to the response status.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded, client-safe error. Err keeps the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an error with a code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Invalid builds an INVALID_INPUT error with per-field messages.
func Invalid(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Fields: fields}
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsInternal reports whether err would be surfaced as an internal error.
func IsInternal(err error) bool {
	return CodeOf(err).Kind() == KindInternal
}

var (
	ErrUnauthenticated = New(CodeUnauthenticated, "missing or invalid credentials")
	ErrForbidden       = New(CodeForbidden, "forbidden")
)

type body struct {
	Error  string            `json:"error"`
	Code   Code              `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Write renders err as a JSON error response. Anything that is not an *Error
// is reported as a generic internal error so storage details never leak.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) || e.Code.Kind() == KindInternal {
		writeBody(w, http.StatusInternalServerError, body{Error: "internal error", Code: CodeInternal})
		return
	}
	writeBody(w, e.Code.HTTPStatus(), body{Error: e.Message, Code: e.Code, Fields: e.Fields})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, status int, b body) {
	WriteJSON(w, status, b)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a request failure. The sync layer branches on it: conflicts
// are swallowed, unauthorized ends the session, transient keeps stale data.
type Kind int

const (
	// KindTransient covers network failures, timeouts and 5xx responses.
	// Recoverable by the next user-initiated action; never retried here.
	KindTransient Kind = iota
	// KindUnauthorized is terminal for the session.
	KindUnauthorized
	// KindConflict means the operation was already satisfied remotely
	// (double-like, double-subscribe). Callers treat it as success.
	KindConflict
	// KindValidation is a rejected input, local or remote, with no
	// network side effect worth reconciling.
	KindValidation
)

// Error is the classified failure returned by every Client call.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("api: %s (status %d)", e.Detail, e.Status)
	default:
		return fmt.Sprintf("api: status %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func errKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsUnauthorized reports whether err is a classified authorization failure.
func IsUnauthorized(err error) bool { return errKind(err, KindUnauthorized) }

// IsConflict reports whether err means "already in the desired state".
func IsConflict(err error) bool { return errKind(err, KindConflict) }

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool { return errKind(err, KindValidation) }

// classify maps a response to a Kind. The server signals "already satisfied"
// as a 400 with a distinguished detail message, e.g. "Already subscribed to
// this topic" or "Article already liked".
func classify(status int, detail string) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "already"):
		return KindConflict
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindTransient
	}
}

func validationErr(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"planner-backend/internal/infrastructure/upstream"
)

// Kind classifies gateway failures.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindConflict  Kind = "conflict"
	KindBadInput  Kind = "bad_input"
	KindForbidden Kind = "forbidden"
	KindInternal  Kind = "internal"
)

// Error is what gateway operations return. Status and Details are rendered as-is, so a store's
// answer reaches the caller with the store's status and body.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func badInput(msg string) *Error {
	return &Error{Kind: KindBadInput, Status: http.StatusBadRequest, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// AsError unwraps err into a gateway *Error.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func kindFor(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return KindForbidden
	case status >= 400 && status < 500:
		return KindBadInput
	}
	return KindInternal
}

// fromStore converts a store call failure. A store answer keeps its status and body; an
// unreachable store becomes unreachableStatus with "<store> unreachable" as detail.
func fromStore(store string, err error, unreachableStatus int) error {
	if err == nil {
		return nil
	}
	if se, ok := upstream.AsStatus(err); ok {
		msg := se.Message()
		if msg == "" {
			msg = http.StatusText(se.Status)
		}
		return &Error{Kind: kindFor(se.Status), Status: se.Status, Message: msg, Details: se.Detail(), cause: err}
	}
	if errors.Is(err, upstream.ErrUnreachable) {
		kind := KindInternal
		if unreachableStatus == http.StatusNotFound {
			kind = KindNotFound
		}
		return &Error{Kind: kind, Status: unreachableStatus, Message: http.StatusText(unreachableStatus), Details: store + " unreachable", cause: err}
	}
	return &Error{Kind: KindInternal, Status: http.StatusBadGateway, Message: "Invalid response from " + store, cause: err}
}

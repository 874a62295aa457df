package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnreachable wraps transport failures and timeouts: the service never answered.
var ErrUnreachable = errors.New("service unreachable")

// StatusError is returned when a service answered with a non-2xx status.
type StatusError struct {
	Service string
	Status  int
	Body    []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d body: %s", e.Service, e.Status, string(e.Body))
}

// Detail returns the body as raw JSON when it is JSON, otherwise as a string.
func (e *StatusError) Detail() interface{} {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

// Message extracts error.message from a standard error envelope, or "".
func (e *StatusError) Message() string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Error.Message
}

// AsStatus unwraps err into a *StatusError.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsStatus reports whether err is a *StatusError with the given status.
func IsStatus(err error, status int) bool {
	se, ok := AsStatus(err)
	return ok && se.Status == status
}

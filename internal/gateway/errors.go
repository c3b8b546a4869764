package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed Open Access API call
type ErrorKind int

const (
	KindUpstreamUnexpected ErrorKind = iota
	KindNotLinked
	KindClientUnauthorized
	KindMalformedRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotLinked:
		return "not_linked"
	case KindClientUnauthorized:
		return "client_unauthorized"
	case KindMalformedRequest:
		return "malformed_request"
	}
	return "upstream_unexpected"
}

// Error is returned from all Gateway operations that do not succeed
type Error struct {
	Kind      ErrorKind
	Operation Operation
	Status    int
	err       error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s failed (%s): %v", e.Operation, e.Kind, e.err)
	}
	return fmt.Sprintf("%s failed (%s): got response %d", e.Operation, e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the ErrorKind of the given error: any error that did not originate as
// a recognized response from the Open Access API is treated as unexpected
func KindOf(err error) ErrorKind {
	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Kind
	}
	return KindUpstreamUnexpected
}

// checkStatus returns nil if the given status code indicates success, or an *Error
// describing the failure otherwise
func checkStatus(op Operation, status int) error {
	kind := KindUpstreamUnexpected
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		kind = KindNotLinked
	case http.StatusForbidden:
		kind = KindClientUnauthorized
	case http.StatusBadRequest:
		kind = KindMalformedRequest
	}
	return &Error{
		Kind:      kind,
		Operation: op,
		Status:    status,
	}
}

func unexpected(op Operation, err error) error {
	return &Error{
		Kind:      KindUpstreamUnexpected,
		Operation: op,
		err:       err,
	}
}

package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures, timeouts and unexpected HTTP statuses.
	ErrTransport = errors.New("broker transport failure")
	// ErrDecode means the response arrived but could not be parsed or lacked a required field.
	ErrDecode = errors.New("broker response decode failure")
	// ErrRejected means the brokerage answered with a non-zero rt_cd.
	ErrRejected = errors.New("broker rejected request")
	// ErrInvalidAccount is returned for account numbers that cannot be split into CANO and product code.
	ErrInvalidAccount = errors.New("invalid account number")
	// ErrMissingCredential is returned when a call has no usable credential.
	ErrMissingCredential = errors.New("missing broker credential")
)

// APIError describes a failed brokerage call. Kind is one of ErrTransport,
// ErrDecode or ErrRejected, so errors.Is works against those sentinels.
type APIError struct {
	Op      string
	TrID    string
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s [%s]: %v", e.Op, e.TrID, e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

package entity

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by gateways and collaborators.
var (
	ErrAuth     = errors.New("authentication failed")
	ErrConnect  = errors.New("connection failed")
	ErrNotFound = errors.New("sheet not found")
	ErrRead     = errors.New("read failed")
	ErrWrite    = errors.New("write failed")
	ErrOCR      = errors.New("receipt could not be read")
)

// GatewayError wraps a failing boundary call with its kind.
type GatewayError struct {
	Op   string
	Kind error
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewGatewayError builds a GatewayError; a nil kind defaults to ErrConnect.
func NewGatewayError(op string, kind, err error) error {
	if kind == nil {
		kind = ErrConnect
	}
	return &GatewayError{Op: op, Kind: kind, Err: err}
}

// ErrorKind returns the taxonomy kind of err, or nil when it is not classified.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrAuth, ErrNotFound, ErrConnect, ErrRead, ErrWrite, ErrOCR} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

package model

import "errors"

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrValidation = errors.New("validation error")
	ErrDatabase   = errors.New("database error")
	ErrQueue      = errors.New("queue error")
)

// Error attaches a kind and the failing operation to an underlying error.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation returns an ErrValidation-kind error.
func Validation(op string, err error) error {
	return &Error{Kind: ErrValidation, Op: op, Err: err}
}

// Database returns an ErrDatabase-kind error.
func Database(op string, err error) error {
	return &Error{Kind: ErrDatabase, Op: op, Err: err}
}

// Queue returns an ErrQueue-kind error.
func Queue(op string, err error) error {
	return &Error{Kind: ErrQueue, Op: op, Err: err}
}

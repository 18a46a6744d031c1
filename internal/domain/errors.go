package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies collaborator failures so callers can apply the
// containment policy explicitly instead of ad hoc catch-and-ignore.
type ErrorKind int

const (
	// ErrUnexpected is any failure not covered by a more specific kind.
	ErrUnexpected ErrorKind = iota

	// ErrPermission means insufficient rights to query or act on a target.
	// The target is skipped and never retried.
	ErrPermission

	// ErrNotFound means the target vanished between discovery and action.
	// Treated as success for kill operations, as absence for queries.
	ErrNotFound

	// ErrTimeout means a collaborator call exceeded its budget. Never fatal;
	// for process kills it triggers a single escalation, otherwise the
	// attempt is simply abandoned for this pass.
	ErrTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrPermission:
		return "permission"
	case ErrNotFound:
		return "not-found"
	case ErrTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}

// OpError is the uniform error wrapper at every collaborator boundary.
type OpError struct {
	Kind   ErrorKind
	Op     string // operation, e.g. "sc stop"
	Target string // the service/task/process the operation acted on
	Err    error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Target, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Target, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// NewOpError builds an OpError.
func NewOpError(kind ErrorKind, op, target string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Target: target, Err: err}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// ErrUnexpected for errors that did not originate at a collaborator boundary.
func KindOf(err error) ErrorKind {
	var op *OpError
	if errors.As(err, &op) {
		return op.Kind
	}
	return ErrUnexpected
}

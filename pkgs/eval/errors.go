package eval

import (
	"fmt"

	"github.com/juju/errors"
)

// RuntimeError is the single opaque runtime-failure kind: undefined
// identifier, unknown callable, arity mismatch, non-callable
// invocation, type mismatch, empty-superposition collapse, recursion
// overflow, sanity depletion. The host-facing transcript line wraps it
// as "Runtime horror: <message>"; internally it stays a
// github.com/juju/errors value so its cause chain is inspectable
// during development.
type RuntimeError struct {
	cause error
}

func (e *RuntimeError) Error() string { return e.cause.Error() }

func newRuntimeError(format string, args ...interface{}) error {
	return &RuntimeError{cause: errors.Annotatef(errors.New(fmt.Sprintf(format, args...)), "runtime")}
}

func (e *Evaluator) runtimeError(format string, args ...interface{}) error {
	return newRuntimeError(format, args...)
}

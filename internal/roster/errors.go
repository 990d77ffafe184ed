package roster

import "fmt"

// ErrorKind classifies a roster.Error so the transport layer can pick an
// HTTP status without inspecting message text.
type ErrorKind string

const (
	// InvalidInput means the request itself was malformed or failed
	// validation before a model was ever built.
	InvalidInput ErrorKind = "invalid_input"
	// Infeasible means CP-SAT proved no schedule satisfies every hard
	// constraint.
	Infeasible ErrorKind = "infeasible"
	// Timeout means the solver hit its time limit without reaching
	// OPTIMAL or proving INFEASIBLE.
	Timeout ErrorKind = "timeout"
	// ModelInvalid means CP-SAT rejected the model itself, which points at
	// a bug in variable or constraint construction rather than the input
	// data.
	ModelInvalid ErrorKind = "model_invalid"
	// InternalError covers everything else, such as a failed solver
	// invocation.
	InternalError ErrorKind = "internal_error"
)

// Error is the single error type roster.Generate and its helpers return.
// Callers should use errors.As to recover the Kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func invalidInputf(format string, args ...any) *Error {
	return newError(InvalidInput, fmt.Sprintf(format, args...), nil)
}

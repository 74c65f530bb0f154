package tree

import (
	"errors"
	"fmt"

	"github.com/joshuapare/ownkit/internal/logger"
)

// ErrOutOfMemory indicates the allocator could not serve a request.
var ErrOutOfMemory = errors.New("tree: allocator exhausted")

// InvariantError describes a violated tree invariant.
// It is the panic value of every fatal diagnostic in this module.
type InvariantError struct {
	Op       string // operation that detected the violation
	Expected string // expected kind, empty when not a kind check
	Actual   string // actual kind
	Message  string
}

// Error implements error.
func (e *InvariantError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s (expected kind %q, got %q)", e.Op, e.Message, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func fail(op, expected, actual, format string, args ...any) {
	err := &InvariantError{
		Op:       op,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf(format, args...),
	}
	logger.Error("invariant violated",
		"op", op,
		"expected", expected,
		"actual", actual,
		"detail", err.Message)
	panic(err)
}

// Panicf reports an invariant violation detected outside a kind check.
// Packages built on the tree use it for their own fatal conditions.
func Panicf(op, format string, args ...any) {
	fail(op, "", "", format, args...)
}

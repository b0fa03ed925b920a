package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ContractViolation is the panic value raised when a naming or conversion
// function is handed input that a well-formed IDL can never produce, such as
// brand-decorating a native name or decorating with an unknown annotation.
//
// It is not an error return: callers must not recover and continue. The only
// recovery point is the process entry, which prints the diagnostic and exits.
type ContractViolation struct {
	Op     string // function that detected the violation
	Symbol string // offending IDL symbol, canonical case
	cause  error
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s (symbol %q): %v", v.Op, v.Symbol, v.cause)
}

func (v *ContractViolation) Unwrap() error { return v.cause }

// Violatef panics with a *ContractViolation. The cause is an assertion
// failure and carries a stack trace.
func Violatef(op, symbol, format string, args ...any) {
	panic(&ContractViolation{
		Op:     op,
		Symbol: symbol,
		cause:  errors.AssertionFailedf(format, args...),
	})
}

// MustNotBeNative panics if any of names is native.
func MustNotBeNative(op string, names ...Name) {
	for _, n := range names {
		if n.Native() {
			Violatef(op, n.ConcatCase(), "native name %q cannot be brand-decorated", n.ConcatCase())
		}
	}
}

// AsContractViolation unwraps a recovered panic value.
func AsContractViolation(r any) (*ContractViolation, bool) {
	switch v := r.(type) {
	case *ContractViolation:
		return v, true
	case error:
		var cv *ContractViolation
		if errors.As(v, &cv) {
			return cv, true
		}
	}
	return nil, false
}

package schema

import "fmt"

// ContractViolation is the panic value raised when the visitor protocol is
// misused: adding after Finalize, finalizing twice, using a visitor after
// Describe returned, or passing values no caller could legally construct.
// These are programmer errors, not runtime conditions.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("schema contract violation in %s: %s", e.Op, e.Reason)
}

func violate(op, format string, args ...interface{}) {
	panic(&ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)})
}

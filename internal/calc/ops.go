package calc

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting
	"math"   // Real exponentiation
)

// The closed set of operation names the service accepts.
const (
	OpAdd      = "Add"
	OpSub      = "Sub"
	OpMultiply = "Multiply"
	OpDivide   = "Divide"
	OpPower    = "Power"
)

// Types lists every known operation name, in a fixed order used when
// zero-filling per-type stats.
var Types = []string{OpAdd, OpSub, OpMultiply, OpDivide, OpPower}

// ErrDivisionByZero is returned when Divide is applied with a zero divisor
var ErrDivisionByZero = errors.New("division by zero")

// UnknownOperationError reports a name outside the closed operation set
type UnknownOperationError struct {
	Name string // The rejected operation name
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation type: %s", e.Name)
}

// IsValidType reports whether name is one of the five known operations
func IsValidType(name string) bool {
	switch name {
	case OpAdd, OpSub, OpMultiply, OpDivide, OpPower:
		return true
	}
	return false
}

// Apply dispatches an operation name to its arithmetic function. Pure: no
// side effects, no I/O. Power follows IEEE-754 semantics for undefined cases
// (negative base with fractional exponent yields NaN, not an error).
func Apply(name string, a, b float64) (float64, error) {
	switch name {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero // Zero divisor is rejected
		}
		return a / b, nil
	case OpPower:
		return math.Pow(a, b), nil
	default:
		return 0, &UnknownOperationError{Name: name} // Name outside the closed set
	}
}

package ledger

import "fmt"

// ValidationError reports a structurally invalid transaction. It is never retried.
type ValidationError struct {
	Field   string
	Missing bool
}

func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Missing: true}
}

func InvalidField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Missing required field: %s", e.Field)
	}
	return fmt.Sprintf("Invalid value for field: %s", e.Field)
}

// NotFoundError is returned when selling a symbol the portfolio does not hold.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Stock with symbol %s not found in portfolio", e.Symbol)
}

// InsufficientQuantityError is returned when a sell asks for more than is held.
type InsufficientQuantityError struct {
	Symbol    string
	Available int
	Requested int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf(
		"Insufficient quantity of %s: available %d, requested %d",
		e.Symbol, e.Available, e.Requested,
	)
}

// QuantityOverflowError is returned when a buy would push the held quantity past the
// largest representable quantity.
type QuantityOverflowError struct {
	Symbol    string
	Held      int
	Requested int
}

func (e *QuantityOverflowError) Error() string {
	return fmt.Sprintf(
		"Quantity of %s is too large: held %d, requested %d",
		e.Symbol, e.Held, e.Requested,
	)
}

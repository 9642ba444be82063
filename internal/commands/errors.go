package commands

// ValidationError reports input rejected locally, before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	// ErrInvalidAmount is returned when the draft amount is not a non-negative number.
	ErrInvalidAmount = &ValidationError{Reason: "invalid amount"}

	// ErrNoPayer is returned when no payer is selected and no people exist.
	ErrNoPayer = &ValidationError{Reason: "no payer available"}
)

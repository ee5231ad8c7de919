package onboarding

// ValidationError is returned for malformed or missing input, before any
// remote call has side effects.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

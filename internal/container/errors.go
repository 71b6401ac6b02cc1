package container

import "fmt"

// InitializationError reports a failed one-time container initialization.
// The wrapped cause is reachable through errors.Unwrap, and the adapter's
// lifecycle state stays retryable so the next invocation attempts
// initialization again.
type InitializationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *InitializationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the original failure.
func (e *InitializationError) Unwrap() error { return e.Cause }

// NewInitializationError wraps cause with a message.
func NewInitializationError(message string, cause error) *InitializationError {
	return &InitializationError{Message: message, Cause: cause}
}

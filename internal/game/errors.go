// Error taxonomy for the turn engine. Every rejection is synchronous and
// mutation-free; callers match with errors.As.
package game

import "fmt"

// ValidationError reports a bad coordinate, excluded terrain, terrain
// mismatch, or an invalid ship run. The action is rejected locally.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ResourceExhaustedError reports an empty munition balance or an AI with no
// legal targets left. It is never silently substituted with another action.
type ResourceExhaustedError struct {
	Resource string
}

func (e *ResourceExhaustedError) Error() string {
	return "exhausted: " + e.Resource
}

// StateError reports an action attempted outside its valid phase or turn.
// Fatal to that action only, not to the match.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "state: " + e.Reason
}

func statef(format string, args ...any) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

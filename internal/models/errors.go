package models

import "fmt"

// ValidationError signals bad or missing input for the current step. It is
// always recoverable: the step is re-prompted.
type ValidationError struct {
	Step   Step
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for step %s: %s", e.Step, e.Reason)
}

// SelectionError signals an out-of-range or unresolvable menu choice.
type SelectionError struct {
	Category string
	Index    int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid observation selection: category %q index %d", e.Category, e.Index)
}

// UpstreamError wraps a failure from an external collaborator. It never aborts
// a conversation; callers degrade to a sentinel value or notify and retry.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigurationError signals a missing credential or an empty catalog. The
// affected feature is disabled and the conversation continues where possible.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s misconfigured: %s", e.Component, e.Reason)
}

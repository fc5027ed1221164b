package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError represents malformed or missing caller input. No state
// change happens and no event is emitted when it is returned.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "invalid input"
	}
	return e.Reason
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrInvalid is the sentinel error for rejected input.
var ErrInvalid = ValidationError{}

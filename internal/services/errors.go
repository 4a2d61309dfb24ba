package services

import "errors"

// Error taxonomy shared by the lifecycle services. Callers branch with
// errors.Is; the HTTP layer maps each class to a status code.
var (
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a policy denial.
	ErrForbidden = errors.New("forbidden")
	// ErrAuthentication marks a credential mismatch.
	ErrAuthentication = errors.New("authentication failed")
	// ErrStorage marks a persistence collaborator failure.
	ErrStorage = errors.New("storage fault")
)

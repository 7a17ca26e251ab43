package service

import "errors"

// Error kinds surfaced to callers. Handlers map these onto HTTP statuses;
// wrap with fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrStorageFailure   = errors.New("storage failure")
	ErrDuplicateEntity  = errors.New("duplicate entity")
)

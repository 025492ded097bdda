package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTaskNotFound       = errors.New("task not found")
	ErrExportUnavailable  = errors.New("task export is not configured")
)

package repository

import "errors"

// Store implementations translate driver errors into these.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrMalformedID = errors.New("malformed identifier")
)

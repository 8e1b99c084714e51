package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	// ErrValidation covers missing or malformed required fields (400).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers references to absent records (404).
	ErrNotFound = errors.New("not found")
	// ErrConflict covers uniqueness violations such as duplicate emails (409).
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized covers bad credentials on login (401).
	ErrUnauthorized = errors.New("invalid credentials")
)

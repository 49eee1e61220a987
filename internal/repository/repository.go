package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no rows.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
	// ErrInsufficientPoints is returned when a debit would overdraw a balance.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrCapacityReached is returned when a capped survey or event is full.
	ErrCapacityReached = errors.New("capacity reached")
)

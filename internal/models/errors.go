package models

import "errors"

var (
	// ErrDataUnavailable means the ledger could not produce a value (store down, auth failure)
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
	// ErrInconsistentState is returned for forbidden state transitions
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrContention is returned when another writer holds the day lock; callers may retry
	ErrContention = errors.New("day is locked by another registration, retry")
	// ErrUnsupported is returned when a ledger backend lacks a capability
	ErrUnsupported = errors.New("operation not supported by this ledger")
)

package domain

import "errors"

var (
	// ErrRecordNotFound is returned when a status update targets a record
	// id/type pair that does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecordType is returned when a record type is neither
	// "email" nor "document"; rejected before any storage query
	ErrInvalidRecordType = errors.New("invalid record type")

	// ErrAllocationFailed is returned when tracking-number allocation fails;
	// the enclosing record creation must not partially persist
	ErrAllocationFailed = errors.New("tracking number allocation failed")
)

package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnlyVersion is returned when modifying a superseded or approved version
	ErrReadOnlyVersion = errors.New("project version is read-only")

	// ErrInvalidStatusTransition is returned when the approval workflow does not allow a status change
	ErrInvalidStatusTransition = errors.New("invalid project status transition")

	// ErrVersionMismatch is returned when comparing versions of different projects
	ErrVersionMismatch = errors.New("versions belong to different projects")
)

// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidUsername is returned when a username does not meet the
	// external user context's naming rules.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidDeckName is returned when a deck name is malformed.
	ErrInvalidDeckName = errors.New("invalid deck name")

	// ErrInvalidContent is returned when card content is malformed.
	ErrInvalidContent = errors.New("invalid card content")

	// ErrNotActive is returned when an operation requires an active entity
	// but the entity has already been disabled.
	ErrNotActive = errors.New("entity is not active")
)

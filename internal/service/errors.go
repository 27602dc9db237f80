package service

import "errors"

// Common service errors
var (
	// ErrNegotiationNotFound is returned when no negotiation matches the link token
	ErrNegotiationNotFound = errors.New("negotiation not found")

	// ErrNegotiationConcluded is returned when writing to a concluded negotiation
	ErrNegotiationConcluded = errors.New("negotiation is concluded")

	// ErrAlreadyConcluded is returned when concluding a negotiation twice
	ErrAlreadyConcluded = errors.New("negotiation already concluded")

	// ErrTermNotFound is returned when a term is not found
	ErrTermNotFound = errors.New("term not found")

	// ErrAgreedValueSet is returned when overwriting a term's agreed value
	ErrAgreedValueSet = errors.New("agreed value already set")

	// ErrInvalidRole is returned when a message carries an unknown or reserved role
	ErrInvalidRole = errors.New("invalid message role")
)

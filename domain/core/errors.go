package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound            = errors.New("resource not found")
	ErrRunNotFound         = fmt.Errorf("%w: run", ErrNotFound)
	ErrDatasetNotFound     = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)

	// Request validation errors - rejected before any generation begins
	ErrInvalidParameter = errors.New("invalid parameter")

	// Model calibration errors - a generated quantity escaped its physical
	// bounds despite the intended clamps; always fatal, never retried
	ErrDegenerateDistribution = errors.New("degenerate distribution")

	// Assembly errors
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// Protocol errors - a protocol definition failed schema validation
	ErrInvalidProtocol = errors.New("invalid protocol definition")

	// Determinism errors
	ErrFingerprintMismatch = errors.New("fingerprint mismatch")
)

// Error constructors with context

// NewInvalidParameterError reports a rejected request parameter
func NewInvalidParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

// NewDegeneracyError names the violating entity and field, per the abort contract
func NewDegeneracyError(entity string, field string, value float64) error {
	return fmt.Errorf("%w: %s %s=%g outside physical bounds", ErrDegenerateDistribution, entity, field, value)
}

// NewIntegrityError reports a measurement whose participant is missing from the participants table
func NewIntegrityError(participantID string) error {
	return fmt.Errorf("%w: measurement references unknown participant %s", ErrReferentialIntegrity, participantID)
}

// NewProtocolError reports a protocol field that failed construction-time validation
func NewProtocolError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidProtocol, field, reason)
}

// NewNotFoundError reports a missing stored resource
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsDegeneracyError(err error) bool {
	return errors.Is(err, ErrDegenerateDistribution)
}

func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidProtocol)
}

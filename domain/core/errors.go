package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound = errors.New("resource not found")

	// Data errors (recoverable: surfaced as reasons on result records)
	ErrTooFewPoints  = errors.New("too few points")
	ErrNonFiniteData = errors.New("non-finite rotation-curve data")

	// Fit errors (recoverable: surfaced as reasons on result records)
	ErrFitNotConverged = errors.New("no convergence")
	ErrNumerical       = errors.New("non-finite value during optimization")

	// Configuration errors (fatal: detected before any galaxy is processed)
	ErrInvalidBounds     = errors.New("invalid scale-parameter bounds")
	ErrInvalidBinPolicy  = errors.New("invalid radial bin policy")
	ErrInvalidHypothesis = errors.New("malformed hypothesis profile")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewBinError(label string, err error) error {
	return fmt.Errorf("%w in %s bin", err, label)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrTooFewPoints) ||
		errors.Is(err, ErrNonFiniteData)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrFitNotConverged) ||
		errors.Is(err, ErrNumerical)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidBounds) ||
		errors.Is(err, ErrInvalidBinPolicy) ||
		errors.Is(err, ErrInvalidHypothesis)
}

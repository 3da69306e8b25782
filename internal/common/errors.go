// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Normalization and merge errors. These abort the affected dataset:
	// partial agreement numbers are worse than no numbers.
	ErrInvalidLabel    = errors.New("invalid label")
	ErrDuplicateSample = errors.New("duplicate sample id")

	// Statistical errors, recovered locally per statistic.
	ErrInsufficientData = errors.New("insufficient data")

	// Database errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Package apperr defines sentinel errors shared across the engine.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyPresent    = errors.New("annotation already present")
	ErrUnsupportedSyntax = errors.New("unsupported file syntax")
	ErrNoEligibleFiles   = errors.New("no eligible files")
)

package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to status codes with errors.Is; the specific
// errors below wrap one of these.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("access denied")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

func notFound(what string) error { return fmt.Errorf("%s %w", what, ErrNotFound) }
func forbidden(msg string) error { return fmt.Errorf("%w: %s", ErrForbidden, msg) }
func invalid(msg string) error   { return fmt.Errorf("%w: %s", ErrValidation, msg) }
func conflict(msg string) error  { return fmt.Errorf("%w: %s", ErrConflict, msg) }

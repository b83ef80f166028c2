package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidState           = errors.New("invalid state")
	ErrValidation             = errors.New("validation failed")
	ErrAuthentication         = errors.New("authentication failed")
	ErrForbidden              = errors.New("forbidden")
	ErrOnboardingPrecondition = errors.New("onboarding precondition failed")
)

// ErrNotRegistered is returned to a verified telegram user that never picked a role.
var ErrNotRegistered = fmt.Errorf("%w: Please choose a role to complete your registration.", ErrAuthentication)

func errNotFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func errConflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

func errInvalidState(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, reason)
}

func errValidation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

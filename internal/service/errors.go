package service

import (
	"errors"
	"fmt"

	"hospital-operations-backend/internal/repository"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomUnavailable   = errors.New("room unavailable")
	ErrDuplicateShift    = errors.New("shift already scheduled for this staff member")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrValidation        = errors.New("validation failed")
	ErrActiveAdmission   = errors.New("patient already has an open admission")
	ErrShiftLocked       = errors.New("shift is locked")
	ErrRoleMismatch      = errors.New("staff roles do not match")
	ErrStaleSwap         = errors.New("shift ownership changed since the swap was requested")
	ErrScorerUnavailable = errors.New("risk scorer unavailable")
)

// InvalidTransitionError names the refused state change.
// errors.Is(err, ErrInvalidTransition) holds for every value of this type.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

package repository

import (
	"errors"
	"fmt"

	"hospital-operations-backend/internal/database"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("already exists")
)

// translate maps driver errors to the package sentinels, naming the entity involved.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%s %w", entity, ErrDuplicate)
	default:
		return err
	}
}

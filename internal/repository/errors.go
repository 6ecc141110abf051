package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrStaleState is returned by guarded updates when no row matched the guard.
var ErrStaleState = errors.New("stale state")

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

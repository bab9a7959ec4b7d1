package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a point lookup finds no row.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyMatched is returned when a payment match loses the race for
	// a bank transaction that another run has claimed in the meantime.
	ErrAlreadyMatched = errors.New("bank transaction already matched")
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

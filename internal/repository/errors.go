// Package repository defines sentinel error values that are reused across
// multiple repositories. These let handlers distinguish failure scenarios
// without inspecting driver errors: ErrForbidden maps to HTTP 403,
// ErrSeatUnavailable to 409, and so on. No raw database error ever crosses
// the handler boundary.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and they are not an admin.
var ErrForbidden = errors.New("forbidden")

// ErrSeatUnavailable is returned by Reserve when the locked seat row is not
// AVAILABLE. This is the expected outcome for every loser of a reservation
// race and is not treated as a server fault.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrSeatNotFound is returned when the referenced seat_availability row does
// not exist.
var ErrSeatNotFound = errors.New("seat availability not found")

// ErrReservationNotFound is returned when the referenced reservation does
// not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrReservationNotActive is returned when an operation requires an ACTIVE
// reservation (cancel, purchase) but the row is already cancelled or sold.
var ErrReservationNotActive = errors.New("reservation not active")

// ErrAlreadyPurchased is returned when a purchase targets a reservation that
// already has a purchase row.
var ErrAlreadyPurchased = errors.New("reservation already purchased")

// ErrConflict is returned when a delete or update cannot proceed because of
// dependent records, such as removing a showtime that still has active
// reservations.
var ErrConflict = errors.New("conflict")

// isForeignKeyErr reports whether err is the MySQL 1451 error (cannot delete
// a parent row referenced by a foreign key).
func isForeignKeyErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1451")
}

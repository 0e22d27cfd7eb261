package model

import "time"

// Reservation states. Cancellation is a soft state flip, never a hard
// delete: the row stays behind for purchase history and auditing.
const (
	ReservationStatusActive    = "ACTIVE"
	ReservationStatusCancelled = "CANCELLED"
)

// Reservation records a user's claim on one SeatAvailability. It is created
// inside the same transaction that flips the seat to RESERVED, and cancelled
// inside the transaction that flips the seat back, so the pairing between
// the two tables is consistent in both directions at every commit point.
type Reservation struct {
	ID                 uint64    // reservations.id
	UserID             uint64    // reservations.user_id
	SeatAvailabilityID uint64    // reservations.seat_availability_id
	Status             string    // ACTIVE or CANCELLED
	CreatedAt          time.Time // reservations.created_at
	UpdatedAt          time.Time // reservations.updated_at
}

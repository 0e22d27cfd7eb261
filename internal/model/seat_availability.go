package model

import "time"

// Seat availability states. A row only ever cycles between these two values:
// reserve flips AVAILABLE -> RESERVED, cancel flips it back. There is no
// terminal state for the lifetime of the showtime.
const (
	SeatStatusAvailable = "AVAILABLE"
	SeatStatusReserved  = "RESERVED"
)

// SeatAvailability is the bookable unit: one seat at one showtime. Exactly
// one row exists per (seat, showtime) pair, created when the showtime is
// provisioned. The status column is mutated only inside the reservation
// transactions, under a row lock, so concurrent reservers serialize on the
// database rather than racing in application memory.
//
// Invariant: a row in status RESERVED has exactly one ACTIVE reservation
// pointing at it, and an AVAILABLE row has none.
type SeatAvailability struct {
	ID         uint64    // seat_availability.id
	SeatID     uint64    // seat_availability.seat_id
	ShowtimeID uint64    // seat_availability.showtime_id
	Status     string    // AVAILABLE or RESERVED
	UpdatedAt  time.Time // seat_availability.updated_at
}

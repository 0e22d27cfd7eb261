package model

import "time"

// Showtime states.
const (
	ShowtimeStatusScheduled = "SCHEDULED"
	ShowtimeStatusCancelled = "CANCELLED"
)

// Showtime schedules a movie in a room. Creating one provisions a
// SeatAvailability row for every active seat of the room.
type Showtime struct {
	ID             uint64
	MovieID        uint64
	RoomID         uint64
	StartsAt       time.Time
	BasePriceCents uint32
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

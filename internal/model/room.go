package model

import "time"

// Room is a screening room. Seats belong to a room and are shared by all
// showtimes scheduled in it.
type Room struct {
	ID        uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Seat is a physical seat inside a room, addressed by row label plus number
// (A1, B12, ...). Inactive seats are skipped when a showtime provisions its
// availability rows.
type Seat struct {
	ID         uint64
	RoomID     uint64
	RowLabel   string
	SeatNumber uint32
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// ReservationEvent is published after a reservation transaction commits,
// for both creations and cancellations. It carries enough context for
// downstream consumers (notifications, analytics) without a query back to
// the primary database. Events are emitted strictly outside the reservation
// transaction: a broker outage must never roll back a committed seat.
type ReservationEvent struct {
	Action             string `json:"action"` // "created" or "cancelled"
	ReservationID      uint64 `json:"reservation_id"`
	UserID             uint64 `json:"user_id"`
	SeatAvailabilityID uint64 `json:"seat_availability_id"`
	OccurredAt         string `json:"occurred_at"` // RFC3339 UTC
}

// Actions for ReservationEvent.
const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
)

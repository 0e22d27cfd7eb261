package model

import "time"

// Purchase finalizes an ACTIVE reservation: it records what the user paid,
// which promotion (if any) was applied and owns the issued ticket and the
// payment record. A reservation can be purchased at most once.
type Purchase struct {
	ID            uint64
	UserID        uint64
	ReservationID uint64
	PromotionID   *uint64 // nil when no promotion was applied
	TotalCents    uint32
	CreatedAt     time.Time
}

// Ticket is the redeemable artifact of a purchase. Code is random hex shown
// at the door.
type Ticket struct {
	ID         uint64
	PurchaseID uint64
	Code       string
	CreatedAt  time.Time
}

// Payment is the bookkeeping record for a purchase. Method and Reference are
// opaque strings supplied by the caller; there is no gateway integration.
type Payment struct {
	ID          uint64
	PurchaseID  uint64
	Method      string
	Reference   string
	AmountCents uint32
	CreatedAt   time.Time
}

package model

import "time"

// Promotion is a percentage discount valid inside a time window. Purchases
// reference at most one promotion by code.
type Promotion struct {
	ID              uint64
	Code            string
	Description     string
	DiscountPercent uint8 // 0-100
	StartsAt        time.Time
	EndsAt          time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package domain

import "time"

// Hold is a time-boxed soft reservation of quantity against a ticket type.
// There is at most one hold per (ticket type, owner) pair. A hold carries no
// status column: liveness is always the predicate ExpiresAt > now, so the
// background reaper is pure storage hygiene and never affects correctness.
type Hold struct {
	ID           string
	TicketTypeID string
	OwnerKey     string
	Quantity     int
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Live reports whether the hold still counts against availability.
func (h Hold) Live(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

package domain

import "time"

// Ticket is one admission unit. Exactly one row exists per purchased unit.
type Ticket struct {
	ID           string
	OrderID      string
	TicketTypeID string
	OwnerKey     string
	Code         string
	Used         bool
	CreatedAt    time.Time
}

package domain

import "time"

// Event groups the ticket types sold for one occasion.
type Event struct {
	ID       string
	Name     string
	StartsAt time.Time
}

package domain

// TicketType is a priced admission class with finite capacity. Sold is the
// authoritative counter: it only moves on checkout commit or refund, never on
// cart activity.
type TicketType struct {
	ID         string
	EventID    string
	Name       string
	PriceCents int64
	Capacity   int
	Sold       int
	Active     bool
}

// Available is the base availability, ignoring holds.
func (t TicketType) Available() int {
	if t.Sold >= t.Capacity {
		return 0
	}
	return t.Capacity - t.Sold
}

package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusRefunded OrderStatus = "refunded"
)

// Order is a purchase attempt. Rows only survive a successful checkout; a
// failed attempt leaves no trace.
type Order struct {
	ID         string
	OwnerKey   string
	Status     OrderStatus
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Items      []OrderItem
}

// OrderItem snapshots name and unit price at purchase time; the line total is
// immutable thereafter.
type OrderItem struct {
	ID             string
	OrderID        string
	TicketTypeID   string
	Name           string
	UnitPriceCents int64
	Quantity       int
	LineTotalCents int64
}

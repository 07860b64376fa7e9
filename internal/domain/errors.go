package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated       = errors.New("authentication required")
	ErrEventNotFound          = errors.New("event not found")
	ErrTicketTypeNotFound     = errors.New("ticket type not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrTicketAlreadyUsed      = errors.New("ticket already used")
	ErrOrderNotRefundable     = errors.New("order cannot be refunded")
	ErrInvalidID              = errors.New("invalid id")
	ErrInvalidCapacity        = errors.New("invalid capacity")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrEventNameRequired      = errors.New("event name required")
	ErrTicketTypeNameRequired = errors.New("ticket type name required")
	ErrPaymentTimeout         = errors.New("payment timed out")
)

// InvalidCartEntryError rejects a cart that cannot enter checkout.
type InvalidCartEntryError struct {
	Reason string
}

func (e *InvalidCartEntryError) Error() string {
	return "invalid cart entry: " + e.Reason
}

// InsufficientInventoryError is the commit-time capacity failure. Available
// reflects the ledger at the moment the reservation was refused.
type InsufficientInventoryError struct {
	TicketTypeID string
	Requested    int
	Available    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for ticket type %s: requested %d, available %d",
		e.TicketTypeID, e.Requested, e.Available)
}

// PaymentDeclinedError carries the gateway reference when one was issued.
type PaymentDeclinedError struct {
	Reference string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reference == "" {
		return "payment declined"
	}
	return "payment declined (reference " + e.Reference + ")"
}

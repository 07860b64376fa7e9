package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
	"github.com/emolinam31/Tickio/internal/payment"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetActiveTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	// ReserveCapacity atomically tests sold+qty <= capacity and increments
	// sold, as one conditional update on the ticket type row. When the test
	// fails it reports ok=false with the availability at refusal time.
	ReserveCapacity(ctx context.Context, ticketTypeID string, qty int) (ok bool, available int, err error)
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	MarkOrderPaid(ctx context.Context, orderID string, totalCents int64, paidAt time.Time) error
	CreateTickets(ctx context.Context, tickets []domain.Ticket) error
	DeleteHoldsByOwner(ctx context.Context, ownerKey string) error
}

// CheckoutService converts a cart into a paid order and issued tickets.
//
// The whole attempt runs in one transaction: reservation, payment call and
// commit. Declines, timeouts, cancellation and internal errors all roll the
// transaction back, so no observer ever sees sold incremented for an order
// that did not complete, and a failed attempt leaves no rows behind. The
// payment call is bounded by payTimeout so the transaction cannot stay open
// indefinitely.
//
// Checkout is intentionally not idempotent: every submission is a fresh
// attempt, and deduplicating client retries is the caller's concern.
type CheckoutService struct {
	repo       CheckoutRepository
	gateway    payment.Gateway
	clock      clock.Clock
	log        *logrus.Logger
	payTimeout time.Duration
}

const defaultPaymentTimeout = 10 * time.Second

func NewCheckoutService(repo CheckoutRepository, gateway payment.Gateway, clk clock.Clock, log *logrus.Logger, opts ...CheckoutServiceOption) *CheckoutService {
	svc := &CheckoutService{
		repo:       repo,
		gateway:    gateway,
		clock:      clk,
		log:        log,
		payTimeout: defaultPaymentTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CheckoutServiceOption func(*CheckoutService)

// WithPaymentTimeout overrides the deadline enforced on the gateway call.
func WithPaymentTimeout(d time.Duration) CheckoutServiceOption {
	return func(s *CheckoutService) {
		if d > 0 {
			s.payTimeout = d
		}
	}
}

// Checkout runs the full purchase for a cart of ticket-type quantities.
func (s *CheckoutService) Checkout(ctx context.Context, ownerKey string, cart map[string]int) (domain.Order, error) {
	if ownerKey == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}
	if len(cart) == 0 {
		return domain.Order{}, &domain.InvalidCartEntryError{Reason: "cart is empty"}
	}

	ids := make([]string, 0, len(cart))
	for id, qty := range cart {
		if id == "" {
			return domain.Order{}, &domain.InvalidCartEntryError{Reason: "missing ticket type id"}
		}
		if qty <= 0 {
			return domain.Order{}, &domain.InvalidCartEntryError{
				Reason: fmt.Sprintf("quantity %d for ticket type %s", qty, id),
			}
		}
		ids = append(ids, id)
	}
	// Reserve in a stable order so concurrent multi-line checkouts cannot
	// deadlock on each other's ticket-type rows.
	sort.Strings(ids)

	now := s.clock.Now()
	order := domain.Order{
		ID:        uuid.NewString(),
		OwnerKey:  ownerKey,
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var totalCents int64
		items := make([]domain.OrderItem, 0, len(ids))

		for _, id := range ids {
			qty := cart[id]

			tt, err := s.repo.GetActiveTicketType(txCtx, id)
			if err != nil {
				if errors.Is(err, domain.ErrTicketTypeNotFound) {
					return &domain.InvalidCartEntryError{Reason: "ticket type " + id + " not found or inactive"}
				}
				return err
			}

			ok, available, err := s.repo.ReserveCapacity(txCtx, id, qty)
			if err != nil {
				return err
			}
			if !ok {
				// First failing line aborts the whole checkout; the rollback
				// discards reservations already made for earlier lines.
				return &domain.InsufficientInventoryError{
					TicketTypeID: id,
					Requested:    qty,
					Available:    available,
				}
			}

			lineTotal := int64(qty) * tt.PriceCents
			totalCents += lineTotal
			items = append(items, domain.OrderItem{
				ID:             uuid.NewString(),
				OrderID:        order.ID,
				TicketTypeID:   id,
				Name:           tt.Name,
				UnitPriceCents: tt.PriceCents,
				Quantity:       qty,
				LineTotalCents: lineTotal,
			})
		}

		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		if err := s.repo.CreateOrderItems(txCtx, items); err != nil {
			return err
		}

		chargeCtx, cancel := context.WithTimeout(txCtx, s.payTimeout)
		defer cancel()
		result, err := s.gateway.Charge(chargeCtx, totalCents, map[string]string{
			"order_id":  order.ID,
			"owner_key": ownerKey,
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return domain.ErrPaymentTimeout
			}
			return err
		}
		if !result.Approved {
			return &domain.PaymentDeclinedError{Reference: result.Reference}
		}

		paidAt := s.clock.Now()
		if err := s.repo.MarkOrderPaid(txCtx, order.ID, totalCents, paidAt); err != nil {
			return err
		}

		tickets := make([]domain.Ticket, 0, totalQuantity(items))
		for _, item := range items {
			for i := 0; i < item.Quantity; i++ {
				tickets = append(tickets, domain.Ticket{
					ID:           uuid.NewString(),
					OrderID:      order.ID,
					TicketTypeID: item.TicketTypeID,
					OwnerKey:     ownerKey,
					Code:         shortuuid.New(),
					CreatedAt:    paidAt,
				})
			}
		}
		if err := s.repo.CreateTickets(txCtx, tickets); err != nil {
			return err
		}
		if err := s.repo.DeleteHoldsByOwner(txCtx, ownerKey); err != nil {
			return err
		}

		order.Status = domain.OrderStatusPaid
		order.TotalCents = totalCents
		order.UpdatedAt = paidAt
		order.Items = items
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"owner_key":   ownerKey,
		"total_cents": order.TotalCents,
		"lines":       len(order.Items),
	}).Info("checkout completed")

	return order, nil
}

func totalQuantity(items []domain.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

package app

import (
	"context"
	"time"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListOrdersByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error
	ListTicketsByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (domain.Ticket, error)
	MarkTicketUsed(ctx context.Context, code string) error
	// ReleaseCapacity decrements sold, clamped at zero. Refund compensation.
	ReleaseCapacity(ctx context.Context, ticketTypeID string, qty int) error
}

// OrderService is the read side of checkout plus the refund compensation
// path.
type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

func (s *OrderService) ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	if ownerKey == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.ListOrdersByOwner(ctx, ownerKey)
}

// Get returns an order with its items, scoped to the owner. Another owner's
// order is indistinguishable from a missing one.
func (s *OrderService) Get(ctx context.Context, ownerKey, orderID string) (domain.Order, error) {
	if ownerKey == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.OwnerKey != ownerKey {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListTickets(ctx context.Context, ownerKey, orderID string) ([]domain.Ticket, error) {
	if _, err := s.Get(ctx, ownerKey, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListTicketsByOrder(ctx, orderID)
}

// Refund moves a paid order to refunded and releases its sold increments.
// The order row is locked so a concurrent refund of the same order fails the
// status check instead of double-releasing.
func (s *OrderService) Refund(ctx context.Context, ownerKey, orderID string) (domain.Order, error) {
	if ownerKey == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}

	var refunded domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.OwnerKey != ownerKey {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.OrderStatusPaid {
			return domain.ErrOrderNotRefundable
		}

		for _, item := range order.Items {
			if err := s.repo.ReleaseCapacity(txCtx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusRefunded, now); err != nil {
			return err
		}

		order.Status = domain.OrderStatusRefunded
		order.UpdatedAt = now
		refunded = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return refunded, nil
}

func (s *OrderService) GetTicketByCode(ctx context.Context, code string) (domain.Ticket, error) {
	if code == "" {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return s.repo.GetTicketByCode(ctx, code)
}

// UseTicket marks a ticket as used, once. A second use is rejected.
func (s *OrderService) UseTicket(ctx context.Context, code string) (domain.Ticket, error) {
	if code == "" {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err := s.repo.MarkTicketUsed(ctx, code); err != nil {
		return domain.Ticket{}, err
	}
	return s.repo.GetTicketByCode(ctx, code)
}

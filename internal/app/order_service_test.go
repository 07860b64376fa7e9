package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
)

type fakeOrderRepo struct {
	orders      map[string]domain.Order
	tickets     map[string]domain.Ticket
	ticketTypes map[string]domain.TicketType
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:      make(map[string]domain.Order),
		tickets:     make(map[string]domain.Ticket),
		ticketTypes: make(map[string]domain.TicketType),
	}
}

func (r *fakeOrderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeOrderRepo) ListOrdersByOwner(_ context.Context, ownerKey string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.OwnerKey == ownerKey {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.GetOrder(ctx, orderID)
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.orders[orderID] = o
	return nil
}

func (r *fakeOrderRepo) ListTicketsByOrder(_ context.Context, orderID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetTicketByCode(_ context.Context, code string) (domain.Ticket, error) {
	t, ok := r.tickets[code]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return t, nil
}

func (r *fakeOrderRepo) MarkTicketUsed(_ context.Context, code string) error {
	t, ok := r.tickets[code]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if t.Used {
		return domain.ErrTicketAlreadyUsed
	}
	t.Used = true
	r.tickets[code] = t
	return nil
}

func (r *fakeOrderRepo) ReleaseCapacity(_ context.Context, ticketTypeID string, qty int) error {
	tt, ok := r.ticketTypes[ticketTypeID]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	tt.Sold -= qty
	if tt.Sold < 0 {
		tt.Sold = 0
	}
	r.ticketTypes[ticketTypeID] = tt
	return nil
}

func TestOrderService_Get(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("another owner's order looks missing", func(t *testing.T) {
		repo := newFakeOrderRepo()
		repo.orders["o-1"] = domain.Order{ID: "o-1", OwnerKey: "user:alex", Status: domain.OrderStatusPaid}
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.Get(context.Background(), "user:sam", "o-1")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		order, err := svc.Get(context.Background(), "user:alex", "o-1")
		require.NoError(t, err)
		assert.Equal(t, "o-1", order.ID)
	})

	t.Run("anonymous access is rejected", func(t *testing.T) {
		svc := NewOrderService(newFakeOrderRepo(), clock.NewFixed(now))

		_, err := svc.Get(context.Background(), "", "o-1")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

		_, err = svc.ListByOwner(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestOrderService_Refund(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed := func() *fakeOrderRepo {
		repo := newFakeOrderRepo()
		repo.ticketTypes["tt-1"] = domain.TicketType{ID: "tt-1", Capacity: 100, Sold: 10}
		repo.orders["o-1"] = domain.Order{
			ID:       "o-1",
			OwnerKey: "user:alex",
			Status:   domain.OrderStatusPaid,
			Items: []domain.OrderItem{
				{ID: "oi-1", OrderID: "o-1", TicketTypeID: "tt-1", Quantity: 3},
			},
		}
		return repo
	}

	t.Run("refund releases capacity and flips status", func(t *testing.T) {
		repo := seed()
		svc := NewOrderService(repo, clock.NewFixed(now))

		order, err := svc.Refund(context.Background(), "user:alex", "o-1")
		require.NoError(t, err)

		assert.Equal(t, domain.OrderStatusRefunded, order.Status)
		assert.Equal(t, now, order.UpdatedAt)
		assert.Equal(t, 7, repo.ticketTypes["tt-1"].Sold)
	})

	t.Run("second refund is rejected without another release", func(t *testing.T) {
		repo := seed()
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.Refund(context.Background(), "user:alex", "o-1")
		require.NoError(t, err)

		_, err = svc.Refund(context.Background(), "user:alex", "o-1")
		assert.ErrorIs(t, err, domain.ErrOrderNotRefundable)
		assert.Equal(t, 7, repo.ticketTypes["tt-1"].Sold)
	})

	t.Run("only the owner can refund", func(t *testing.T) {
		repo := seed()
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.Refund(context.Background(), "user:sam", "o-1")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.Equal(t, 10, repo.ticketTypes["tt-1"].Sold)
	})
}

func TestOrderService_UseTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("a ticket is used exactly once", func(t *testing.T) {
		repo := newFakeOrderRepo()
		repo.tickets["CODE1"] = domain.Ticket{ID: "t-1", OrderID: "o-1", Code: "CODE1"}
		svc := NewOrderService(repo, clock.NewFixed(now))

		ticket, err := svc.UseTicket(context.Background(), "CODE1")
		require.NoError(t, err)
		assert.True(t, ticket.Used)

		_, err = svc.UseTicket(context.Background(), "CODE1")
		assert.ErrorIs(t, err, domain.ErrTicketAlreadyUsed)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc := NewOrderService(newFakeOrderRepo(), clock.NewFixed(now))

		_, err := svc.UseTicket(context.Background(), "NOPE")
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emolinam31/Tickio/internal/domain"
)

type CheckoutRepository struct {
	pool *pgxpool.Pool
}

func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

func (r *CheckoutRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CheckoutRepository) GetActiveTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price_cents, capacity, sold, active
FROM ticket_types
WHERE id = $1 AND active`

	var tt domain.TicketType
	err := r.queryRow(ctx, query, ticketTypeID).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.Capacity, &tt.Sold, &tt.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("get active ticket type: %w", err)
	}
	return tt, nil
}

// ReserveCapacity is the single commit-time gate: one conditional update that
// both tests and claims capacity. Two concurrent reservations serialize on the
// row lock, and the loser re-evaluates the condition against the committed
// sold value.
func (r *CheckoutRepository) ReserveCapacity(ctx context.Context, ticketTypeID string, qty int) (bool, int, error) {
	const stmt = `
UPDATE ticket_types
SET sold = sold + $2
WHERE id = $1 AND active AND sold + $2 <= capacity`

	tag, err := r.exec(ctx, stmt, ticketTypeID, qty)
	if err != nil {
		if isInvalidUUID(err) {
			return false, 0, domain.ErrInvalidID
		}
		return false, 0, fmt.Errorf("reserve capacity: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, 0, nil
	}

	const availQuery = `SELECT GREATEST(capacity - sold, 0) FROM ticket_types WHERE id = $1`
	var available int
	if err := r.queryRow(ctx, availQuery, ticketTypeID).Scan(&available); err != nil {
		if err == pgx.ErrNoRows {
			return false, 0, domain.ErrTicketTypeNotFound
		}
		return false, 0, fmt.Errorf("reserve capacity: %w", err)
	}
	return false, available, nil
}

func (r *CheckoutRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, owner_key, status, total_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.OwnerKey,
		order.Status,
		order.TotalCents,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (id, order_id, ticket_type_id, name, unit_price_cents, quantity, line_total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range items {
		_, err := r.exec(ctx, stmt,
			item.ID,
			item.OrderID,
			item.TicketTypeID,
			item.Name,
			item.UnitPriceCents,
			item.Quantity,
			item.LineTotalCents,
		)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) MarkOrderPaid(ctx context.Context, orderID string, totalCents int64, paidAt time.Time) error {
	const stmt = `
UPDATE orders
SET status = $2, total_cents = $3, updated_at = $4
WHERE id = $1 AND status = $5`

	tag, err := r.exec(ctx, stmt, orderID, domain.OrderStatusPaid, totalCents, paidAt, domain.OrderStatusCreated)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *CheckoutRepository) CreateTickets(ctx context.Context, tickets []domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, order_id, ticket_type_id, owner_key, code, used, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, t := range tickets {
		_, err := r.exec(ctx, stmt,
			t.ID,
			t.OrderID,
			t.TicketTypeID,
			t.OwnerKey,
			t.Code,
			t.Used,
			t.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create ticket: code collision for %s: %w", t.ID, err)
			}
			return fmt.Errorf("create ticket: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) DeleteHoldsByOwner(ctx context.Context, ownerKey string) error {
	const stmt = `DELETE FROM holds WHERE owner_key = $1`

	if _, err := r.exec(ctx, stmt, ownerKey); err != nil {
		return fmt.Errorf("delete holds by owner: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CheckoutRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

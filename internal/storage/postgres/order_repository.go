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

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) ListOrdersByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	const query = `
SELECT id, owner_key, status, total_cents, created_at, updated_at
FROM orders
WHERE owner_key = $1
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.OwnerKey, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, orderID string, forUpdate bool) (domain.Order, error) {
	query := `
SELECT id, owner_key, status, total_cents, created_at, updated_at
FROM orders
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var o domain.Order
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.ID, &o.OwnerKey, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.listOrderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, ticket_type_id, name, unit_price_cents, quantity, line_total_cents
FROM order_items
WHERE order_id = $1
ORDER BY name`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.TicketTypeID, &it.Name, &it.UnitPriceCents, &it.Quantity, &it.LineTotalCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListTicketsByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	const query = `
SELECT id, order_id, ticket_type_id, owner_key, code, used, created_at
FROM tickets
WHERE order_id = $1
ORDER BY created_at`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.OwnerKey, &t.Code, &t.Used, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (r *OrderRepository) GetTicketByCode(ctx context.Context, code string) (domain.Ticket, error) {
	const query = `
SELECT id, order_id, ticket_type_id, owner_key, code, used, created_at
FROM tickets
WHERE code = $1`

	var t domain.Ticket
	err := r.queryRow(ctx, query, code).
		Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.OwnerKey, &t.Code, &t.Used, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// MarkTicketUsed flips used exactly once; the condition makes double scans
// lose cleanly.
func (r *OrderRepository) MarkTicketUsed(ctx context.Context, code string) error {
	const stmt = `UPDATE tickets SET used = TRUE WHERE code = $1 AND NOT used`

	tag, err := r.exec(ctx, stmt, code)
	if err != nil {
		return fmt.Errorf("mark ticket used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetTicketByCode(ctx, code); err != nil {
			return err
		}
		return domain.ErrTicketAlreadyUsed
	}
	return nil
}

func (r *OrderRepository) ReleaseCapacity(ctx context.Context, ticketTypeID string, qty int) error {
	const stmt = `UPDATE ticket_types SET sold = GREATEST(sold - $2, 0) WHERE id = $1`

	tag, err := r.exec(ctx, stmt, ticketTypeID, qty)
	if err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

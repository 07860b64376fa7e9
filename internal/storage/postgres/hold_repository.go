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

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price_cents, capacity, sold, active
FROM ticket_types
WHERE id = $1`

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
		return domain.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	return tt, nil
}

// UpsertHold inserts or replaces the single hold for a (ticket type, owner)
// pair. On conflict the quantity and expiry are overwritten, so a refresh is
// last-writer-wins by database ordering.
func (r *HoldRepository) UpsertHold(ctx context.Context, hold domain.Hold) (domain.Hold, error) {
	const stmt = `
INSERT INTO holds (id, ticket_type_id, owner_key, quantity, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (ticket_type_id, owner_key)
DO UPDATE SET quantity = EXCLUDED.quantity, expires_at = EXCLUDED.expires_at
RETURNING id, ticket_type_id, owner_key, quantity, created_at, expires_at`

	var out domain.Hold
	err := r.queryRow(ctx, stmt,
		hold.ID,
		hold.TicketTypeID,
		hold.OwnerKey,
		hold.Quantity,
		hold.CreatedAt,
		hold.ExpiresAt,
	).Scan(&out.ID, &out.TicketTypeID, &out.OwnerKey, &out.Quantity, &out.CreatedAt, &out.ExpiresAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		return domain.Hold{}, fmt.Errorf("upsert hold: %w", err)
	}
	return out, nil
}

func (r *HoldRepository) DeleteHold(ctx context.Context, ticketTypeID, ownerKey string) error {
	const stmt = `DELETE FROM holds WHERE ticket_type_id = $1 AND owner_key = $2`

	_, err := r.exec(ctx, stmt, ticketTypeID, ownerKey)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) DeleteHoldsByOwner(ctx context.Context, ownerKey string) error {
	const stmt = `DELETE FROM holds WHERE owner_key = $1`

	if _, err := r.exec(ctx, stmt, ownerKey); err != nil {
		return fmt.Errorf("delete holds by owner: %w", err)
	}
	return nil
}

func (r *HoldRepository) ListActiveHoldsByOwner(ctx context.Context, ownerKey string, now time.Time) ([]domain.Hold, error) {
	const query = `
SELECT id, ticket_type_id, owner_key, quantity, created_at, expires_at
FROM holds
WHERE owner_key = $1 AND expires_at > $2
ORDER BY created_at`

	rows, err := r.query(ctx, query, ownerKey, now)
	if err != nil {
		return nil, fmt.Errorf("list active holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		var h domain.Hold
		if err := rows.Scan(&h.ID, &h.TicketTypeID, &h.OwnerKey, &h.Quantity, &h.CreatedAt, &h.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active holds: %w", err)
	}
	return holds, nil
}

func (r *HoldRepository) SumActiveHolds(ctx context.Context, ticketTypeID string, now time.Time, excludeOwner string) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM holds
WHERE ticket_type_id = $1 AND expires_at > $2 AND owner_key <> $3`

	var total int
	if err := r.queryRow(ctx, query, ticketTypeID, now, excludeOwner).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum active holds: %w", err)
	}
	return total, nil
}

func (r *HoldRepository) DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `DELETE FROM holds WHERE expires_at <= $1`

	tag, err := r.exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *HoldRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emolinam31/Tickio/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `INSERT INTO events (id, name, starts_at) VALUES ($1, $2, $3)`

	if _, err := r.exec(ctx, stmt, event.ID, event.Name, event.StartsAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT id, name, starts_at FROM events ORDER BY starts_at`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartsAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *CatalogRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `SELECT id, name, starts_at FROM events WHERE id = $1`

	var e domain.Event
	err := r.queryRow(ctx, query, eventID).Scan(&e.ID, &e.Name, &e.StartsAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *CatalogRepository) CreateTicketType(ctx context.Context, tt domain.TicketType) error {
	const stmt = `
INSERT INTO ticket_types (id, event_id, name, price_cents, capacity, sold, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		tt.ID,
		tt.EventID,
		tt.Name,
		tt.PriceCents,
		tt.Capacity,
		tt.Sold,
		tt.Active,
	)
	if err != nil {
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price_cents, capacity, sold, active
FROM ticket_types
WHERE event_id = $1
ORDER BY name`

	rows, err := r.query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []domain.TicketType
	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.Capacity, &tt.Sold, &tt.Active); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return types, nil
}

func (r *CatalogRepository) SetTicketTypeActive(ctx context.Context, ticketTypeID string, active bool) error {
	const stmt = `UPDATE ticket_types SET active = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, ticketTypeID, active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set ticket type active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

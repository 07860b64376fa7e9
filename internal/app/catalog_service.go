package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
)

type CatalogRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	CreateTicketType(ctx context.Context, tt domain.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
	SetTicketTypeActive(ctx context.Context, ticketTypeID string, active bool) error
}

// CatalogService is the admin surface for events and ticket types. It never
// touches sold; capacity changes go through new ticket types.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
}

func (s *CatalogService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:       uuid.NewString(),
		Name:     in.Name,
		StartsAt: startsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *CatalogService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateTicketTypeInput struct {
	EventID    string
	Name       string
	PriceCents int64
	Capacity   int
}

func (s *CatalogService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.EventID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.TicketType{}, domain.ErrTicketTypeNameRequired
	}
	if in.Capacity < 0 {
		return domain.TicketType{}, domain.ErrInvalidCapacity
	}
	if in.PriceCents < 0 {
		return domain.TicketType{}, domain.ErrInvalidPrice
	}
	if _, err := s.repo.GetEvent(ctx, in.EventID); err != nil {
		return domain.TicketType{}, err
	}

	tt := domain.TicketType{
		ID:         uuid.NewString(),
		EventID:    in.EventID,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		Capacity:   in.Capacity,
		Sold:       0,
		Active:     true,
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return domain.TicketType{}, err
	}
	return tt, nil
}

func (s *CatalogService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketTypesByEvent(ctx, eventID)
}

func (s *CatalogService) SetTicketTypeActive(ctx context.Context, ticketTypeID string, active bool) error {
	if ticketTypeID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.SetTicketTypeActive(ctx, ticketTypeID, active)
}

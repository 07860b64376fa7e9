package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
)

type HoldRepository interface {
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	UpsertHold(ctx context.Context, hold domain.Hold) (domain.Hold, error)
	DeleteHold(ctx context.Context, ticketTypeID, ownerKey string) error
	DeleteHoldsByOwner(ctx context.Context, ownerKey string) error
	ListActiveHoldsByOwner(ctx context.Context, ownerKey string, now time.Time) ([]domain.Hold, error)
}

// HoldService manages the single soft hold per (ticket type, owner) pair.
// Holds never touch the sold counter; they only shape perceived availability.
type HoldService struct {
	repo    HoldRepository
	clock   clock.Clock
	holdTTL time.Duration
}

const defaultHoldTTL = 10 * time.Minute

func NewHoldService(repo HoldRepository, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new and refreshed holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// UpsertHold creates or replaces the hold for the pair, refreshing its expiry.
// A quantity of zero or less is equivalent to ReleaseHold. Last writer wins:
// the pair belongs to a single shopper's evolving cart.
func (s *HoldService) UpsertHold(ctx context.Context, ticketTypeID, ownerKey string, quantity int) (domain.Hold, error) {
	if ownerKey == "" {
		return domain.Hold{}, domain.ErrNotAuthenticated
	}
	if ticketTypeID == "" {
		return domain.Hold{}, domain.ErrInvalidID
	}
	if quantity <= 0 {
		return domain.Hold{}, s.ReleaseHold(ctx, ticketTypeID, ownerKey)
	}

	tt, err := s.repo.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return domain.Hold{}, err
	}
	if !tt.Active {
		return domain.Hold{}, domain.ErrTicketTypeNotFound
	}

	now := s.clock.Now()
	hold := domain.Hold{
		ID:           uuid.NewString(),
		TicketTypeID: ticketTypeID,
		OwnerKey:     ownerKey,
		Quantity:     quantity,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.holdTTL),
	}
	return s.repo.UpsertHold(ctx, hold)
}

// ReleaseHold deletes the hold if present; releasing a missing hold is not an
// error.
func (s *HoldService) ReleaseHold(ctx context.Context, ticketTypeID, ownerKey string) error {
	if ownerKey == "" {
		return domain.ErrNotAuthenticated
	}
	if ticketTypeID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteHold(ctx, ticketTypeID, ownerKey)
}

// ReleaseAllForOwner clears the owner's cart.
func (s *HoldService) ReleaseAllForOwner(ctx context.Context, ownerKey string) error {
	if ownerKey == "" {
		return domain.ErrNotAuthenticated
	}
	return s.repo.DeleteHoldsByOwner(ctx, ownerKey)
}

// ListActiveForOwner returns the owner's live holds, the cart view.
func (s *HoldService) ListActiveForOwner(ctx context.Context, ownerKey string) ([]domain.Hold, error) {
	if ownerKey == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.ListActiveHoldsByOwner(ctx, ownerKey, s.clock.Now())
}

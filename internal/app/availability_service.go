package app

import (
	"context"
	"time"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/domain"
)

type AvailabilityRepository interface {
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	// SumActiveHolds totals live hold quantity for a ticket type, optionally
	// excluding one owner (empty string excludes nobody).
	SumActiveHolds(ctx context.Context, ticketTypeID string, now time.Time, excludeOwner string) (int, error)
}

// AvailabilityService derives the shopper-facing availability number. It is
// advisory only: the commit-time gate is the ledger's conditional update, so
// two hold-free shoppers can still race for the last units.
type AvailabilityService struct {
	repo  AvailabilityRepository
	clock clock.Clock
}

func NewAvailabilityService(repo AvailabilityRepository, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{
		repo:  repo,
		clock: clk,
	}
}

// EffectiveAvailable is capacity minus sold minus other owners' live holds,
// clamped at zero. The owner's own hold is excluded so it never suppresses
// their own perceived availability.
func (s *AvailabilityService) EffectiveAvailable(ctx context.Context, ticketTypeID, ownerKey string) (int, error) {
	if ticketTypeID == "" {
		return 0, domain.ErrInvalidID
	}
	tt, err := s.repo.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return 0, err
	}

	others, err := s.repo.SumActiveHolds(ctx, ticketTypeID, s.clock.Now(), ownerKey)
	if err != nil {
		return 0, err
	}

	available := tt.Capacity - tt.Sold - others
	if available < 0 {
		return 0, nil
	}
	return available, nil
}

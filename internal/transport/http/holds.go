package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/emolinam31/Tickio/internal/domain"
	"github.com/emolinam31/Tickio/internal/metrics"
)

// CartService is the hold surface the cart handlers need.
type CartService interface {
	UpsertHold(ctx context.Context, ticketTypeID, ownerKey string, quantity int) (domain.Hold, error)
	ReleaseHold(ctx context.Context, ticketTypeID, ownerKey string) error
	ReleaseAllForOwner(ctx context.Context, ownerKey string) error
	ListActiveForOwner(ctx context.Context, ownerKey string) ([]domain.Hold, error)
}

type cartHandlers struct {
	holds   CartService
	metrics *metrics.Metrics
}

type upsertHoldRequest struct {
	Quantity int `json:"quantity"`
}

type holdResponse struct {
	ID           string    `json:"id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toHoldResponse(h domain.Hold) holdResponse {
	return holdResponse{
		ID:           h.ID,
		TicketTypeID: h.TicketTypeID,
		Quantity:     h.Quantity,
		ExpiresAt:    h.ExpiresAt,
	}
}

// PUT /cart/items/:id
func (h *cartHandlers) upsertItem(c echo.Context) error {
	var req upsertHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	hold, err := h.holds.UpsertHold(c.Request().Context(), c.Param("id"), ownerKey(c), req.Quantity)
	if err != nil {
		return err
	}
	if req.Quantity <= 0 {
		h.metrics.HoldsReleased.Inc()
		return c.NoContent(http.StatusNoContent)
	}
	h.metrics.HoldsUpserted.Inc()
	return c.JSON(http.StatusOK, toHoldResponse(hold))
}

// DELETE /cart/items/:id
func (h *cartHandlers) removeItem(c echo.Context) error {
	if err := h.holds.ReleaseHold(c.Request().Context(), c.Param("id"), ownerKey(c)); err != nil {
		return err
	}
	h.metrics.HoldsReleased.Inc()
	return c.NoContent(http.StatusNoContent)
}

// GET /cart
func (h *cartHandlers) list(c echo.Context) error {
	holds, err := h.holds.ListActiveForOwner(c.Request().Context(), ownerKey(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items": lo.Map(holds, func(hold domain.Hold, _ int) holdResponse {
			return toHoldResponse(hold)
		}),
	})
}

// DELETE /cart
func (h *cartHandlers) clear(c echo.Context) error {
	if err := h.holds.ReleaseAllForOwner(c.Request().Context(), ownerKey(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

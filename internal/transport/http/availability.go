package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AvailabilityReader interface {
	EffectiveAvailable(ctx context.Context, ticketTypeID, ownerKey string) (int, error)
}

type availabilityHandlers struct {
	availability AvailabilityReader
}

type availabilityResponse struct {
	TicketTypeID string `json:"ticket_type_id"`
	Available    int    `json:"available"`
}

// GET /availability/:id
//
// The number is a point-in-time estimate: the requester's own hold is
// excluded, and only the checkout ledger update is authoritative.
func (h *availabilityHandlers) get(c echo.Context) error {
	id := c.Param("id")
	available, err := h.availability.EffectiveAvailable(c.Request().Context(), id, ownerKey(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResponse{
		TicketTypeID: id,
		Available:    available,
	})
}

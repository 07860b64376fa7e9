package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/emolinam31/Tickio/internal/app"
	"github.com/emolinam31/Tickio/internal/domain"
)

type CatalogManager interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error)
	SetTicketTypeActive(ctx context.Context, ticketTypeID string, active bool) error
}

type catalogHandlers struct {
	catalog CatalogManager
}

type createEventRequest struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{ID: e.ID, Name: e.Name, StartsAt: e.StartsAt}
}

type createTicketTypeRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Capacity   int    `json:"capacity"`
}

type ticketTypeResponse struct {
	ID         string `json:"id"`
	EventID    string `json:"event_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Capacity   int    `json:"capacity"`
	Sold       int    `json:"sold"`
	Active     bool   `json:"active"`
}

func toTicketTypeResponse(tt domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		ID:         tt.ID,
		EventID:    tt.EventID,
		Name:       tt.Name,
		PriceCents: tt.PriceCents,
		Capacity:   tt.Capacity,
		Sold:       tt.Sold,
		Active:     tt.Active,
	}
}

// POST /admin/events
func (h *catalogHandlers) createEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	event, err := h.catalog.CreateEvent(c.Request().Context(), app.CreateEventInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(event))
}

// GET /events
func (h *catalogHandlers) listEvents(c echo.Context) error {
	events, err := h.catalog.ListEvents(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"events": lo.Map(events, func(e domain.Event, _ int) eventResponse {
			return toEventResponse(e)
		}),
	})
}

// POST /admin/events/:id/ticket-types
func (h *catalogHandlers) createTicketType(c echo.Context) error {
	var req createTicketTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tt, err := h.catalog.CreateTicketType(c.Request().Context(), app.CreateTicketTypeInput{
		EventID:    c.Param("id"),
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Capacity:   req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTicketTypeResponse(tt))
}

// GET /events/:id/ticket-types
func (h *catalogHandlers) listTicketTypes(c echo.Context) error {
	types, err := h.catalog.ListTicketTypes(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ticket_types": lo.Map(types, func(tt domain.TicketType, _ int) ticketTypeResponse {
			return toTicketTypeResponse(tt)
		}),
	})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// PATCH /admin/ticket-types/:id
func (h *catalogHandlers) setTicketTypeActive(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.catalog.SetTicketTypeActive(c.Request().Context(), c.Param("id"), req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

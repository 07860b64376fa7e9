package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/emolinam31/Tickio/internal/domain"
)

type OrderReader interface {
	ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error)
	Get(ctx context.Context, ownerKey, orderID string) (domain.Order, error)
	ListTickets(ctx context.Context, ownerKey, orderID string) ([]domain.Ticket, error)
	Refund(ctx context.Context, ownerKey, orderID string) (domain.Order, error)
	GetTicketByCode(ctx context.Context, code string) (domain.Ticket, error)
	UseTicket(ctx context.Context, code string) (domain.Ticket, error)
}

type orderHandlers struct {
	orders OrderReader
}

type ticketResponse struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Code         string    `json:"code"`
	Used         bool      `json:"used"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		OrderID:      t.OrderID,
		TicketTypeID: t.TicketTypeID,
		Code:         t.Code,
		Used:         t.Used,
		CreatedAt:    t.CreatedAt,
	}
}

func requireUser(c echo.Context) (string, error) {
	if !isAuthenticated(c) {
		return "", domain.ErrNotAuthenticated
	}
	return ownerKey(c), nil
}

// GET /orders
func (h *orderHandlers) list(c echo.Context) error {
	owner, err := requireUser(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orders": lo.Map(orders, func(o domain.Order, _ int) orderResponse {
			return toOrderResponse(o)
		}),
	})
}

// GET /orders/:id
func (h *orderHandlers) get(c echo.Context) error {
	owner, err := requireUser(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// GET /orders/:id/tickets
func (h *orderHandlers) listTickets(c echo.Context) error {
	owner, err := requireUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.orders.ListTickets(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"tickets": lo.Map(tickets, func(t domain.Ticket, _ int) ticketResponse {
			return toTicketResponse(t)
		}),
	})
}

// POST /orders/:id/refund
func (h *orderHandlers) refund(c echo.Context) error {
	owner, err := requireUser(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Refund(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// GET /tickets/:code
func (h *orderHandlers) getTicket(c echo.Context) error {
	ticket, err := h.orders.GetTicketByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(ticket))
}

// POST /tickets/:code/use
func (h *orderHandlers) useTicket(c echo.Context) error {
	ticket, err := h.orders.UseTicket(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(ticket))
}

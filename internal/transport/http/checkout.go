package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/emolinam31/Tickio/internal/domain"
	"github.com/emolinam31/Tickio/internal/metrics"
	"github.com/emolinam31/Tickio/internal/queue"
)

type CheckoutRunner interface {
	Checkout(ctx context.Context, ownerKey string, cart map[string]int) (domain.Order, error)
}

type checkoutHandlers struct {
	checkout  CheckoutRunner
	publisher *queue.Publisher
	metrics   *metrics.Metrics
}

type checkoutRequest struct {
	Items map[string]int `json:"items"`
}

type orderItemResponse struct {
	TicketTypeID   string `json:"ticket_type_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	CreatedAt  time.Time           `json:"created_at"`
	Items      []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:         o.ID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		Items: lo.Map(o.Items, func(it domain.OrderItem, _ int) orderItemResponse {
			return orderItemResponse{
				TicketTypeID:   it.TicketTypeID,
				Name:           it.Name,
				UnitPriceCents: it.UnitPriceCents,
				Quantity:       it.Quantity,
				LineTotalCents: it.LineTotalCents,
			}
		}),
	}
}

// POST /checkout
//
// Requires an authenticated user. Each call is a fresh attempt; retries after
// a timeout can double-charge, which is the documented trade-off.
func (h *checkoutHandlers) run(c echo.Context) error {
	if !isAuthenticated(c) {
		return domain.ErrNotAuthenticated
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.checkout.Checkout(c.Request().Context(), ownerKey(c), req.Items)
	if err != nil {
		h.metrics.CheckoutAttempts.WithLabelValues(checkoutResult(err)).Inc()
		return err
	}

	h.metrics.CheckoutAttempts.WithLabelValues("success").Inc()
	h.metrics.TicketsIssued.Add(float64(totalUnits(order.Items)))

	_ = h.publisher.PublishOrderPaid(c.Request().Context(), queue.OrderPaidEvent{
		OrderID:    order.ID,
		OwnerKey:   order.OwnerKey,
		TotalCents: order.TotalCents,
		Lines: lo.Map(order.Items, func(it domain.OrderItem, _ int) queue.OrderLine {
			return queue.OrderLine{
				TicketTypeID: it.TicketTypeID,
				Name:         it.Name,
				Quantity:     it.Quantity,
			}
		}),
		PaidAt: order.UpdatedAt,
	})

	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

func checkoutResult(err error) string {
	var (
		cartErr      *domain.InvalidCartEntryError
		inventoryErr *domain.InsufficientInventoryError
		declinedErr  *domain.PaymentDeclinedError
	)
	switch {
	case errors.As(err, &cartErr):
		return "invalid_cart"
	case errors.As(err, &inventoryErr):
		return "insufficient_inventory"
	case errors.As(err, &declinedErr):
		return "payment_declined"
	case errors.Is(err, domain.ErrPaymentTimeout):
		return "payment_timeout"
	default:
		return "error"
	}
}

func totalUnits(items []domain.OrderItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

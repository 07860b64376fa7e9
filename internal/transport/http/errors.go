package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/emolinam31/Tickio/internal/domain"
)

const (
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidID              = "invalid_id"
	codeInvalidCapacity        = "invalid_capacity"
	codeInvalidPrice           = "invalid_price"
	codeEventNameRequired      = "event_name_required"
	codeTicketTypeNameRequired = "ticket_type_name_required"
	codeInvalidCartEntry       = "invalid_cart_entry"
	codeInsufficientInventory  = "insufficient_inventory"
	codePaymentDeclined        = "payment_declined"
	codePaymentTimeout         = "payment_timeout"
	codeAuthRequired           = "authentication_required"
	codeEventNotFound          = "event_not_found"
	codeTicketTypeNotFound     = "ticket_type_not_found"
	codeOrderNotFound          = "order_not_found"
	codeTicketNotFound         = "ticket_not_found"
	codeTicketAlreadyUsed      = "ticket_already_used"
	codeOrderNotRefundable     = "order_not_refundable"
	codeRateLimited            = "rate_limited"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorHandler maps domain errors to status and a stable machine-readable
// code. Unknown errors are logged and masked as internal_error.
func errorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := mapError(err)
		if status == http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("request failed")
			msg = "internal error"
		}
		_ = c.JSON(status, errorResponse{Error: msg, Code: code})
	}
}

func mapError(err error) (int, string, string) {
	var (
		cartErr      *domain.InvalidCartEntryError
		inventoryErr *domain.InsufficientInventoryError
		declinedErr  *domain.PaymentDeclinedError
		httpErr      *echo.HTTPError
	)

	switch {
	case errors.As(err, &cartErr):
		return http.StatusBadRequest, codeInvalidCartEntry, err.Error()
	case errors.As(err, &inventoryErr):
		return http.StatusConflict, codeInsufficientInventory, err.Error()
	case errors.As(err, &declinedErr):
		return http.StatusPaymentRequired, codePaymentDeclined, err.Error()
	case errors.Is(err, domain.ErrPaymentTimeout):
		return http.StatusGatewayTimeout, codePaymentTimeout, err.Error()
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, codeAuthRequired, err.Error()
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, codeEventNotFound, err.Error()
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		return http.StatusNotFound, codeTicketTypeNotFound, err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, codeOrderNotFound, err.Error()
	case errors.Is(err, domain.ErrTicketNotFound):
		return http.StatusNotFound, codeTicketNotFound, err.Error()
	case errors.Is(err, domain.ErrTicketAlreadyUsed):
		return http.StatusConflict, codeTicketAlreadyUsed, err.Error()
	case errors.Is(err, domain.ErrOrderNotRefundable):
		return http.StatusConflict, codeOrderNotRefundable, err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, codeInvalidID, err.Error()
	case errors.Is(err, domain.ErrInvalidCapacity):
		return http.StatusBadRequest, codeInvalidCapacity, err.Error()
	case errors.Is(err, domain.ErrInvalidPrice):
		return http.StatusBadRequest, codeInvalidPrice, err.Error()
	case errors.Is(err, domain.ErrEventNameRequired):
		return http.StatusBadRequest, codeEventNameRequired, err.Error()
	case errors.Is(err, domain.ErrTicketTypeNameRequired):
		return http.StatusBadRequest, codeTicketTypeNameRequired, err.Error()
	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusNotFound {
			return http.StatusNotFound, codeNotFound, "not found"
		}
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, codeInvalidRequestBody, msg
		}
		return httpErr.Code, codeInvalidRequestBody, http.StatusText(httpErr.Code)
	default:
		return http.StatusInternalServerError, codeInternalError, err.Error()
	}
}

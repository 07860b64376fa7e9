package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emolinam31/Tickio/internal/domain"
)

func TestOrderEndpoints(t *testing.T) {
	t.Parallel()

	seed := func() *fakeOrders {
		return &fakeOrders{
			orders: map[string]domain.Order{
				"o-1": {ID: "o-1", OwnerKey: "user:alex", Status: domain.OrderStatusPaid, TotalCents: 5000},
			},
			tickets: map[string]domain.Ticket{
				"CODE1": {ID: "t-1", OrderID: "o-1", Code: "CODE1"},
			},
		}
	}

	asUser := func(sub string) func(*http.Request) {
		return func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, sub))
		}
	}

	t.Run("owner sees their order", func(t *testing.T) {
		e, _ := newTestRouter(Services{Orders: seed()})

		rec := doJSON(t, e, http.MethodGet, "/orders/o-1", "", asUser("alex"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"o-1"`)
	})

	t.Run("another user's order is 404", func(t *testing.T) {
		e, _ := newTestRouter(Services{Orders: seed()})

		rec := doJSON(t, e, http.MethodGet, "/orders/o-1", "", asUser("sam"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeOrderNotFound, decodeError(t, rec).Code)
	})

	t.Run("anonymous order listing is 401", func(t *testing.T) {
		e, _ := newTestRouter(Services{Orders: seed()})

		rec := doJSON(t, e, http.MethodGet, "/orders", "", func(req *http.Request) {
			req.Header.Set(sessionHeader, "abc")
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refund flips the order", func(t *testing.T) {
		orders := seed()
		e, _ := newTestRouter(Services{Orders: orders})

		rec := doJSON(t, e, http.MethodPost, "/orders/o-1/refund", "", asUser("alex"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"refunded"`)

		rec = doJSON(t, e, http.MethodPost, "/orders/o-1/refund", "", asUser("alex"))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, codeOrderNotRefundable, decodeError(t, rec).Code)
	})

	t.Run("ticket scan succeeds once", func(t *testing.T) {
		orders := seed()
		e, _ := newTestRouter(Services{Orders: orders})

		rec := doJSON(t, e, http.MethodPost, "/tickets/CODE1/use", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"used":true`)

		rec = doJSON(t, e, http.MethodPost, "/tickets/CODE1/use", "", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, codeTicketAlreadyUsed, decodeError(t, rec).Code)
	})

	t.Run("unknown ticket code", func(t *testing.T) {
		e, _ := newTestRouter(Services{Orders: seed()})

		rec := doJSON(t, e, http.MethodGet, "/tickets/NOPE", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeTicketNotFound, decodeError(t, rec).Code)
	})
}

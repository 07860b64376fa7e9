package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emolinam31/Tickio/internal/app"
	"github.com/emolinam31/Tickio/internal/config"
	"github.com/emolinam31/Tickio/internal/domain"
	"github.com/emolinam31/Tickio/internal/metrics"
)

type fakeCartService struct {
	holds     map[string]domain.Hold
	upsertErr error
}

func (s *fakeCartService) UpsertHold(_ context.Context, ticketTypeID, ownerKey string, quantity int) (domain.Hold, error) {
	if s.upsertErr != nil {
		return domain.Hold{}, s.upsertErr
	}
	if ownerKey == "" {
		return domain.Hold{}, domain.ErrNotAuthenticated
	}
	if quantity <= 0 {
		delete(s.holds, ticketTypeID)
		return domain.Hold{}, nil
	}
	hold := domain.Hold{
		ID:           "h-1",
		TicketTypeID: ticketTypeID,
		OwnerKey:     ownerKey,
		Quantity:     quantity,
		ExpiresAt:    time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC),
	}
	s.holds[ticketTypeID] = hold
	return hold, nil
}

func (s *fakeCartService) ReleaseHold(_ context.Context, ticketTypeID, ownerKey string) error {
	if ownerKey == "" {
		return domain.ErrNotAuthenticated
	}
	delete(s.holds, ticketTypeID)
	return nil
}

func (s *fakeCartService) ReleaseAllForOwner(_ context.Context, ownerKey string) error {
	if ownerKey == "" {
		return domain.ErrNotAuthenticated
	}
	s.holds = map[string]domain.Hold{}
	return nil
}

func (s *fakeCartService) ListActiveForOwner(_ context.Context, ownerKey string) ([]domain.Hold, error) {
	if ownerKey == "" {
		return nil, domain.ErrNotAuthenticated
	}
	var out []domain.Hold
	for _, h := range s.holds {
		out = append(out, h)
	}
	return out, nil
}

type fakeAvailability struct {
	available int
	err       error
}

func (s *fakeAvailability) EffectiveAvailable(context.Context, string, string) (int, error) {
	return s.available, s.err
}

type fakeCheckout struct {
	order domain.Order
	err   error

	gotOwner string
	gotCart  map[string]int
}

func (s *fakeCheckout) Checkout(_ context.Context, ownerKey string, cart map[string]int) (domain.Order, error) {
	s.gotOwner = ownerKey
	s.gotCart = cart
	if s.err != nil {
		return domain.Order{}, s.err
	}
	return s.order, nil
}

type fakeOrders struct {
	orders  map[string]domain.Order
	tickets map[string]domain.Ticket
}

func (s *fakeOrders) ListByOwner(_ context.Context, ownerKey string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.OwnerKey == ownerKey {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrders) Get(_ context.Context, ownerKey, orderID string) (domain.Order, error) {
	o, ok := s.orders[orderID]
	if !ok || o.OwnerKey != ownerKey {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeOrders) ListTickets(ctx context.Context, ownerKey, orderID string) ([]domain.Ticket, error) {
	if _, err := s.Get(ctx, ownerKey, orderID); err != nil {
		return nil, err
	}
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeOrders) Refund(ctx context.Context, ownerKey, orderID string) (domain.Order, error) {
	o, err := s.Get(ctx, ownerKey, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.OrderStatusPaid {
		return domain.Order{}, domain.ErrOrderNotRefundable
	}
	o.Status = domain.OrderStatusRefunded
	s.orders[orderID] = o
	return o, nil
}

func (s *fakeOrders) GetTicketByCode(_ context.Context, code string) (domain.Ticket, error) {
	t, ok := s.tickets[code]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return t, nil
}

func (s *fakeOrders) UseTicket(_ context.Context, code string) (domain.Ticket, error) {
	t, ok := s.tickets[code]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if t.Used {
		return domain.Ticket{}, domain.ErrTicketAlreadyUsed
	}
	t.Used = true
	s.tickets[code] = t
	return t, nil
}

type fakeCatalog struct {
	events []domain.Event
}

func (s *fakeCatalog) CreateEvent(_ context.Context, in app.CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	event := domain.Event{ID: "ev-1", Name: in.Name}
	s.events = append(s.events, event)
	return event, nil
}

func (s *fakeCatalog) ListEvents(context.Context) ([]domain.Event, error) {
	return s.events, nil
}

func (s *fakeCatalog) CreateTicketType(_ context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error) {
	return domain.TicketType{ID: "tt-1", EventID: in.EventID, Name: in.Name, PriceCents: in.PriceCents, Capacity: in.Capacity, Active: true}, nil
}

func (s *fakeCatalog) ListTicketTypes(context.Context, string) ([]domain.TicketType, error) {
	return nil, nil
}

func (s *fakeCatalog) SetTicketTypeActive(context.Context, string, bool) error {
	return nil
}

func newTestRouter(svcs Services) (*echo.Echo, *metrics.Metrics) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.Config{
		JWTSecret:   testSecret,
		CORSOrigins: []string{"http://localhost:5173"},
	}
	m := metrics.New()
	return NewRouter(cfg, svcs, m, nil, nil, log), m
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, configure func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	e, _ := newTestRouter(Services{})
	rec := doJSON(t, e, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	e, _ := newTestRouter(Services{})
	rec := doJSON(t, e, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tickio_checkout_attempts_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	e, _ := newTestRouter(Services{})
	rec := doJSON(t, e, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decodeError(t, rec).Code)
}

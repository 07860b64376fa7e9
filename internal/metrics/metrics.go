package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters on a private registry so tests can
// create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	CheckoutAttempts *prometheus.CounterVec
	HoldsUpserted    prometheus.Counter
	HoldsReleased    prometheus.Counter
	HoldsReaped      prometheus.Counter
	TicketsIssued    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CheckoutAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tickio_checkout_attempts_total",
			Help: "Checkout attempts by result.",
		}, []string{"result"}),
		HoldsUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickio_holds_upserted_total",
			Help: "Cart holds created or refreshed.",
		}),
		HoldsReleased: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickio_holds_released_total",
			Help: "Cart holds released explicitly.",
		}),
		HoldsReaped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickio_holds_reaped_total",
			Help: "Expired holds deleted by the reaper.",
		}),
		TicketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickio_tickets_issued_total",
			Help: "Tickets issued by successful checkouts.",
		}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kitchen_orders_placed_total",
		Help: "Orders accepted by the API.",
	})

	StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_order_status_updates_total",
		Help: "Applied order status transitions.",
	}, []string{"status"})

	RejectedTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kitchen_order_transitions_rejected_total",
		Help: "Status updates rejected by the lifecycle rules.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

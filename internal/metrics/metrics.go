// Package metrics exposes the ledger's seat accounting to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Eursukkul/table-booking/internal/ledger"
	"github.com/Eursukkul/table-booking/internal/models"
)

type Ledger struct {
	capacity     prometheus.Gauge
	seatsLeft    prometheus.Gauge
	reservations *prometheus.GaugeVec
	operations   *prometheus.CounterVec
}

func NewLedger(reg prometheus.Registerer) *Ledger {
	f := promauto.With(reg)
	return &Ledger{
		capacity: f.NewGauge(prometheus.GaugeOpts{
			Name: "table_booking_capacity_seats",
			Help: "Fixed seating capacity of the venue.",
		}),
		seatsLeft: f.NewGauge(prometheus.GaugeOpts{
			Name: "table_booking_seats_left",
			Help: "Seats not held by checked-in reservations.",
		}),
		reservations: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "table_booking_reservations",
			Help: "Reservations on the ledger by status.",
		}, []string{"status"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "table_booking_operations_total",
			Help: "Ledger operations by name and result.",
		}, []string{"operation", "result"}),
	}
}

// Observe records the current state.
func (m *Ledger) Observe(s ledger.State) {
	if m == nil {
		return
	}
	var in, out int
	for _, r := range s.Reservations {
		if r.Status == models.StatusCheckedIn {
			in++
		} else {
			out++
		}
	}
	m.capacity.Set(float64(s.Capacity))
	m.seatsLeft.Set(float64(s.SeatsLeft))
	m.reservations.WithLabelValues(string(models.StatusCheckedIn)).Set(float64(in))
	m.reservations.WithLabelValues(string(models.StatusCheckedOut)).Set(float64(out))
}

func (m *Ledger) Operation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

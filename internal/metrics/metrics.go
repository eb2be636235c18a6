package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenvvay/Parking/internal/domain"
)

const namespace = "parking"

// Metrics is nil-safe: every method on a nil *Metrics does nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	available     prometheus.Gauge
	capacity      prometheus.Gauge
	passages      *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	payments      *prometheus.CounterVec
	revenue       prometheus.Counter
	tariffVersion prometheus.Gauge
	gateMessages  *prometheus.CounterVec
	notifyDropped prometheus.Counter
}

// New registers the collectors on reg. Passing prometheus.NewRegistry()
// keeps tests independent from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		available: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "available_spaces",
			Help: "Free parking spaces.",
		}),
		capacity: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "capacity_spaces",
			Help: "Total parking spaces.",
		}),
		passages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gate_passages_total",
			Help: "Accepted gate passages.",
		}, []string{"event", "gate"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gate_rejections_total",
			Help: "Refused gate passages by reason.",
		}, []string{"event", "reason"}),
		payments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_total",
			Help: "Payment attempts by outcome.",
		}, []string{"result"}),
		revenue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "revenue_total",
			Help: "Sum of accepted payments.",
		}),
		tariffVersion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "tariff_version",
			Help: "Number of tariffs installed since start.",
		}),
		gateMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gate_messages_total",
			Help: "Gate controller messages consumed from the queue.",
		}, []string{"type", "result"}),
		notifyDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_dropped_total",
			Help: "Facility notifications dropped because the queue was full.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SetOccupancy(available, capacity int) {
	if m == nil {
		return
	}
	m.available.Set(float64(available))
	m.capacity.Set(float64(capacity))
}

func (m *Metrics) Passage(event domain.EventKind, gate int) {
	if m == nil {
		return
	}
	m.passages.WithLabelValues(string(event), strconv.Itoa(gate)).Inc()
}

func (m *Metrics) Rejection(event domain.EventKind, err error) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(string(event), Reason(err)).Inc()
}

func (m *Metrics) Payment(accepted bool, amount domain.Price) {
	if m == nil {
		return
	}
	if !accepted {
		m.payments.WithLabelValues("declined").Inc()
		return
	}
	m.payments.WithLabelValues("accepted").Inc()
	if amount > 0 {
		m.revenue.Add(float64(amount))
	}
}

func (m *Metrics) TariffInstalled(version int) {
	if m == nil {
		return
	}
	m.tariffVersion.Set(float64(version))
}

func (m *Metrics) GateMessage(messageType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = Reason(err)
	}
	m.gateMessages.WithLabelValues(messageType, result).Inc()
}

func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.notifyDropped.Inc()
}

// Reason maps a gate error onto a short label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrNoCapacity):
		return "no_capacity"
	case errors.Is(err, domain.ErrInvalidGate):
		return "invalid_gate"
	case errors.Is(err, domain.ErrTicketMismatch):
		return "ticket_mismatch"
	case errors.Is(err, domain.ErrTicketAlreadyUsed):
		return "ticket_already_used"
	case errors.Is(err, domain.ErrInvalidVehicle):
		return "invalid_vehicle"
	case errors.Is(err, domain.ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, domain.ErrTicketNotFound):
		return "ticket_not_found"
	default:
		return "error"
	}
}

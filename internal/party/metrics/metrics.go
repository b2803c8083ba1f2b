package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the party module.
// Tracks lifecycle outcomes, uniqueness conflicts and operation durations.
type Metrics struct {
	PartiesCreated    prometheus.Counter
	PartiesUpdated    prometheus.Counter
	Conflicts         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers the party metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PartiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "party_created_total",
			Help: "Total number of parties created",
		}),
		PartiesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "party_updated_total",
			Help: "Total number of party updates committed",
		}),
		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "party_conflicts_total",
			Help: "Writes rejected because a unique field was already taken or the row changed",
		}, []string{"field"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "party_operation_duration_seconds",
			Help:    "Duration of party lifecycle operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "outcome"}),
	}
}

// IncrementCreated records a successful creation.
func (m *Metrics) IncrementCreated() {
	m.PartiesCreated.Inc()
}

// IncrementUpdated records a committed update.
func (m *Metrics) IncrementUpdated() {
	m.PartiesUpdated.Inc()
}

// IncrementConflict records a rejected write. field is custId, emailId or version.
func (m *Metrics) IncrementConflict(field string) {
	m.Conflicts.WithLabelValues(field).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

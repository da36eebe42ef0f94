package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claim lifecycle.
type Metrics struct {
	ClaimsRegistered   prometheus.Counter
	DocumentsAttached  prometheus.Counter
	ClaimLookups       *prometheus.CounterVec
	DocumentRejections *prometheus.CounterVec
	OperationLatency   *prometheus.HistogramVec
}

// New creates the claim metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClaimsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "sinistro_claims_registered_total",
			Help: "Total number of claims registered",
		}),

		DocumentsAttached: factory.NewCounter(prometheus.CounterOpts{
			Name: "sinistro_documents_attached_total",
			Help: "Total number of documents attached to claims",
		}),

		ClaimLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistro_claim_lookups_total",
			Help: "Claim tracking lookups by result",
		}, []string{"result"}), // result: "found", "absent"

		DocumentRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistro_document_rejections_total",
			Help: "Document attachments rejected before storage, by reason",
		}, []string{"reason"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sinistro_operation_duration_seconds",
			Help:    "Duration of claim lifecycle operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// IncrementClaimsRegistered records a successful registration.
func (m *Metrics) IncrementClaimsRegistered() {
	if m != nil {
		m.ClaimsRegistered.Inc()
	}
}

// IncrementDocumentsAttached records a stored document.
func (m *Metrics) IncrementDocumentsAttached() {
	if m != nil {
		m.DocumentsAttached.Inc()
	}
}

// IncrementLookup records a tracking lookup outcome.
func (m *Metrics) IncrementLookup(found bool) {
	if m == nil {
		return
	}
	result := "absent"
	if found {
		result = "found"
	}
	m.ClaimLookups.WithLabelValues(result).Inc()
}

// IncrementRejection records a rejected document attachment.
func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.DocumentRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveOperation records how long an operation took.
func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

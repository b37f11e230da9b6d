package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	once sync.Once

	admissionDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "absensi",
			Name:      "admission_decisions_total",
			Help:      "Count of clock-in/clock-out admission decisions by outcome.",
		},
		[]string{"kind", "outcome"},
	)

	geofenceChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "absensi",
			Name:      "geofence_checks_total",
			Help:      "Count of geofence evaluations by result.",
		},
		[]string{"result"},
	)

	storageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "absensi",
			Name:      "storage_failures_total",
			Help:      "Count of unexpected storage errors by operation.",
		},
		[]string{"operation"},
	)
)

// Register registers metrics (idempotent). subscribers reports the live
// number of SSE connections.
func Register(subscribers func() float64) {
	once.Do(func() {
		prometheus.MustRegister(admissionDecisions, geofenceChecks, storageFailures)
		if subscribers != nil {
			prometheus.MustRegister(prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Namespace: "absensi",
					Name:      "sse_subscribers",
					Help:      "Number of connected live attendance feed subscribers.",
				},
				subscribers,
			))
		}
	})
}

func IncAdmissionDecision(kind, outcome string) {
	admissionDecisions.WithLabelValues(kind, outcome).Inc()
}

func IncGeofenceCheck(result string) {
	geofenceChecks.WithLabelValues(result).Inc()
}

// GeofenceCheckCount reads the geofence counter for result.
func GeofenceCheckCount(result string) float64 {
	var m dto.Metric
	if err := geofenceChecks.WithLabelValues(result).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func IncStorageFailure(operation string) {
	storageFailures.WithLabelValues(operation).Inc()
}

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus instruments. Backpressure signals
// (ring full, pending admissions) surface here as metrics, never as errors.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	ReceiptsTotal  prometheus.Counter
	ParksTotal     prometheus.Counter
	DemotionsTotal prometheus.Counter
	RingFullTotal  prometheus.Counter
	DroppedTotal   prometheus.Counter
	PendingAdmits  prometheus.Gauge
}

// NewMetrics creates and registers the engine metrics. A nil registerer
// leaves the instruments unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_cycles_total",
			Help: "Cycles committed at the pulse boundary.",
		}),
		ReceiptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_receipts_total",
			Help: "Receipts produced by successful dispatches.",
		}),
		ParksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_parks_total",
			Help: "Batches parked for exceeding the tick budget.",
		}),
		DemotionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_demotions_total",
			Help: "Parked batches permanently demoted to the cold path.",
		}),
		RingFullTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_ring_full_total",
			Help: "Enqueue attempts rejected by a full ring slot.",
		}),
		DroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritick_dropped_total",
			Help: "Batches dropped after executor errors.",
		}),
		PendingAdmits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "veritick_pending_admissions",
			Help: "Batches waiting for ring capacity at their tick offset.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.CyclesTotal, m.ReceiptsTotal, m.ParksTotal,
			m.DemotionsTotal, m.RingFullTotal, m.DroppedTotal,
			m.PendingAdmits,
		)
	}
	return m
}

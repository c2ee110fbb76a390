package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	ticksAccepted *prometheus.CounterVec
	ticksRejected *prometheus.CounterVec
	alertsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	flushDuration *prometheus.HistogramVec
	gauges        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_ticks_accepted_total",
				Help: "Total number of ticks accepted into the engine",
			},
			[]string{"pair", "price_type"},
		),
		ticksRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_ticks_rejected_total",
				Help: "Total number of ticks dropped, by reason",
			},
			[]string{"pair", "reason"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_alerts_total",
				Help: "Total number of alerts emitted",
			},
			[]string{"pair", "severity"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_last_price",
				Help: "Last accepted price for a pair",
			},
			[]string{"pair"},
		),
		flushDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxpulse_flush_duration_seconds",
				Help:    "Duration of candle flush passes",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		gauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_engine_gauge",
				Help: "Engine state gauges (ledger depth, dirty buckets)",
			},
			[]string{"name"},
		),
	}
}

// RecordTickAccepted counts an accepted tick.
func (r *Recorder) RecordTickAccepted(pair, priceType string) {
	r.ticksAccepted.WithLabelValues(pair, priceType).Inc()
}

// RecordTickRejected counts a dropped tick by reason.
func (r *Recorder) RecordTickRejected(pair, reason string) {
	r.ticksRejected.WithLabelValues(pair, reason).Inc()
}

// RecordAlert counts an emitted alert.
func (r *Recorder) RecordAlert(pair, severity string) {
	r.alertsTotal.WithLabelValues(pair, severity).Inc()
}

// RecordLastPrice records the last accepted price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordFlush observes a flush pass duration by outcome.
func (r *Recorder) RecordFlush(outcome string, seconds float64) {
	r.flushDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordGauge sets a named engine gauge.
func (r *Recorder) RecordGauge(name string, value float64) {
	r.gauges.WithLabelValues(name).Set(value)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuctionMetrics holds every collector the engine reports. Construct once
// per process; promauto registers with the default registry.
type AuctionMetrics struct {
	BidsAcceptedTotal      prometheus.Counter
	BidsRejectedTotal      prometheus.CounterVec
	BidAdmissionDuration   prometheus.Histogram
	AuctionsSettledTotal   prometheus.CounterVec
	AuctionsCancelledTotal prometheus.Counter
	PaymentsVerifiedTotal  prometheus.Counter
	PaymentsFailedTotal    prometheus.CounterVec
	BroadcastEventsTotal   prometheus.CounterVec
	SubscribersGauge       prometheus.Gauge
}

func NewAuctionMetrics() *AuctionMetrics {
	return &AuctionMetrics{
		BidsAcceptedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bids_accepted_total",
				Help: "Bids that passed admission and were committed to the ledger",
			},
		),

		BidsRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bids_rejected_total",
				Help: "Bids rejected at admission, by reason",
			},
			[]string{"reason"},
		),

		BidAdmissionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bid_admission_duration_seconds",
				Help:    "Time spent inside the per-auction admission critical section",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),

		AuctionsSettledTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auctions_settled_total",
				Help: "Auctions settled, by outcome (winner / no_bids)",
			},
			[]string{"outcome"},
		),

		AuctionsCancelledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auctions_cancelled_total",
				Help: "Auctions cancelled by admin action before their end time",
			},
		),

		PaymentsVerifiedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_verified_total",
				Help: "Gateway callbacks verified and applied to an order",
			},
		),

		PaymentsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_failed_total",
				Help: "Failed payment attempts, by stage (signature / gateway / client_reported)",
			},
			[]string{"stage"},
		),

		BroadcastEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broadcast_events_total",
				Help: "Real-time events published to rooms, by event type",
			},
			[]string{"event_type"},
		),

		SubscribersGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "broadcast_subscribers",
				Help: "Currently connected room subscribers",
			},
		),
	}
}

func (m *AuctionMetrics) RecordBidAccepted() {
	m.BidsAcceptedTotal.Inc()
}

func (m *AuctionMetrics) RecordBidRejected(reason string) {
	m.BidsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *AuctionMetrics) RecordAdmissionDuration(seconds float64) {
	m.BidAdmissionDuration.Observe(seconds)
}

func (m *AuctionMetrics) RecordSettlement(outcome string) {
	m.AuctionsSettledTotal.WithLabelValues(outcome).Inc()
}

func (m *AuctionMetrics) RecordCancellation() {
	m.AuctionsCancelledTotal.Inc()
}

func (m *AuctionMetrics) RecordPaymentVerified() {
	m.PaymentsVerifiedTotal.Inc()
}

func (m *AuctionMetrics) RecordPaymentFailed(stage string) {
	m.PaymentsFailedTotal.WithLabelValues(stage).Inc()
}

func (m *AuctionMetrics) RecordBroadcast(eventType string) {
	m.BroadcastEventsTotal.WithLabelValues(eventType).Inc()
}

func (m *AuctionMetrics) SubscriberJoined() {
	m.SubscribersGauge.Inc()
}

func (m *AuctionMetrics) SubscriberLeft() {
	m.SubscribersGauge.Dec()
}

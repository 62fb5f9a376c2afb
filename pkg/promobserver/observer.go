// Package promobserver exports store lifecycle events as Prometheus metrics.
package promobserver

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/petrijr/fetchstore/pkg/api"
)

const namespace = "fetchstore"

// Outcome label values of fetchstore_fetches_total.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Observer implements api.Observer on top of Prometheus collectors.
type Observer struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	inFlight      *prometheus.GaugeVec

	activations  *prometheus.CounterVec
	streamEvents *prometheus.CounterVec
	activeStream *prometheus.GaugeVec
}

var _ api.Observer = (*Observer)(nil)

// New registers the collectors with reg and returns the Observer.
// A nil reg means prometheus.DefaultRegisterer. Registering twice with the
// same registry panics, like promauto does.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Observer{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Settled pull calls by store, lane and outcome.",
		}, []string{"store", "lane", "outcome"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Worker duration of completed pull calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "lane"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetches_in_flight",
			Help:      "Pull calls currently waiting on their worker.",
		}, []string{"store", "lane"}),
		activations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_activations_total",
			Help:      "Started stream activations, including restarts.",
		}, []string{"store"}),
		streamEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Stream events by store and kind.",
		}, []string{"store", "kind"}),
		activeStream: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_active",
			Help:      "Stream activations that have not received their end event.",
		}, []string{"store"}),
	}
}

func (o *Observer) OnFetchStart(ctx context.Context, info api.FetchInfo) {
	o.inFlight.WithLabelValues(info.StoreName, string(info.Lane)).Inc()
}

func (o *Observer) OnFetchCompleted(ctx context.Context, info api.FetchInfo, err error, d time.Duration) {
	lane := string(info.Lane)
	o.inFlight.WithLabelValues(info.StoreName, lane).Dec()
	o.fetchDuration.WithLabelValues(info.StoreName, lane).Observe(d.Seconds())

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	o.fetches.WithLabelValues(info.StoreName, lane, outcome).Inc()
}

func (o *Observer) OnFetchCancelled(ctx context.Context, info api.FetchInfo) {
	lane := string(info.Lane)
	o.inFlight.WithLabelValues(info.StoreName, lane).Dec()
	o.fetches.WithLabelValues(info.StoreName, lane, OutcomeCancelled).Inc()
}

func (o *Observer) OnStreamStart(ctx context.Context, info api.StreamInfo) {
	o.activations.WithLabelValues(info.StoreName).Inc()
	o.activeStream.WithLabelValues(info.StoreName).Inc()
}

func (o *Observer) OnStreamEvent(ctx context.Context, info api.StreamInfo, kind api.EventKind, err error) {
	o.streamEvents.WithLabelValues(info.StoreName, string(kind)).Inc()
}

func (o *Observer) OnStreamEnd(ctx context.Context, info api.StreamInfo, d time.Duration) {
	o.activeStream.WithLabelValues(info.StoreName).Dec()
	o.streamEvents.WithLabelValues(info.StoreName, string(api.EventEnd)).Inc()
}

package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process's Prometheus instrumentation on a private
// registry. A nil *Metrics is valid and records nothing, so callers
// never have to guard.
type Metrics struct {
	reg *prometheus.Registry

	Lookups         *prometheus.CounterVec // outcome label: ok|no_routes|address_not_found|bad_schedule|horizon_exhausted|geocoder_error|routes_error
	Upstream        *prometheus.CounterVec // service label: geocoder|routes; result label: ok|error
	LookupDuration  prometheus.Histogram
	TelegramUpdates prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweepy_lookups_total",
			Help: "Total lookups by outcome.",
		}, []string{"outcome"}),
		Upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweepy_upstream_requests_total",
			Help: "Requests to ArcGIS services by result.",
		}, []string{"service", "result"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweepy_lookup_duration_seconds",
			Help:    "Duration of complete lookups.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		TelegramUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweepy_telegram_updates_total",
			Help: "Telegram updates handled.",
		}),
	}

	reg.MustRegister(
		m.Lookups, m.Upstream, m.LookupDuration, m.TelegramUpdates,
	)

	return m
}

func (m *Metrics) CountLookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountUpstream(service string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Upstream.WithLabelValues(service, result).Inc()
}

func (m *Metrics) ObserveLookupDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(d.Seconds())
}

func (m *Metrics) CountTelegramUpdate() {
	if m == nil {
		return
	}
	m.TelegramUpdates.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Starts an HTTP server exposing /metrics on addr.
func (m *Metrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	QueriesIssued      prometheus.Counter
	StaleResponses     prometheus.Counter
	SearchFailures     prometheus.Counter
	SearchLatencySec   prometheus.Histogram
	ScheduleParseFails prometheus.Counter

	ActiveSessions  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsReaped  prometheus.Counter

	ReviewsPosted  prometheus.Counter
	ImagesUploaded prometheus.Counter

	HTTPRequests *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	issued := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_queries_issued_total"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_stale_responses_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_search_failures_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "discover_search_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	parseFails := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_schedule_parse_failures_total"})

	active := prometheus.NewGauge(prometheus.GaugeOpts{Name: "discover_active_sessions"})
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_sessions_created_total"})
	reaped := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_sessions_reaped_total"})

	reviews := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_reviews_posted_total"})
	images := prometheus.NewCounter(prometheus.CounterOpts{Name: "discover_review_images_uploaded_total"})

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "discover_http_requests_total"}, []string{"method", "route", "code"})

	r.MustRegister(issued, stale, failures, latency, parseFails, active, created, reaped, reviews, images, requests)
	return &Registry{
		reg:                r,
		QueriesIssued:      issued,
		StaleResponses:     stale,
		SearchFailures:     failures,
		SearchLatencySec:   latency,
		ScheduleParseFails: parseFails,
		ActiveSessions:     active,
		SessionsCreated:    created,
		SessionsReaped:     reaped,
		ReviewsPosted:      reviews,
		ImagesUploaded:     images,
		HTTPRequests:       requests,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// The methods below let the registry observe coordinators and the schedule evaluator directly.

func (r *Registry) QueryIssued()                         { r.QueriesIssued.Inc() }
func (r *Registry) QueryCompleted(latency time.Duration) { r.SearchLatencySec.Observe(latency.Seconds()) }
func (r *Registry) StaleDiscarded()                      { r.StaleResponses.Inc() }
func (r *Registry) SearchFailed()                        { r.SearchFailures.Inc() }
func (r *Registry) ScheduleParseFailed()                 { r.ScheduleParseFails.Inc() }

package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors the API
// exposes on /metrics.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	slotConflictsTotal  *prometheus.CounterVec
	meritListsGenerated prometheus.Counter
}

// NewMetricsService registers all collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed, by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache lookups served from Redis.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache lookups that fell through to the database.",
		}),
		slotConflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_slot_conflicts_total",
			Help: "Rejected slot writes, by conflict axis.",
		}, []string{"axis"}),
		meritListsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "merit_lists_generated_total",
			Help: "Merit list snapshots generated.",
		}),
	}

	registry.MustRegister(
		s.httpRequestsTotal,
		s.httpRequestDuration,
		s.cacheHits,
		s.cacheMisses,
		s.slotConflictsTotal,
		s.meritListsGenerated,
	)
	return s
}

// Registry exposes the registry for the /metrics handler.
func (s *MetricsService) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry over HTTP.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest observes one completed request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	s.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheHit counts a Redis hit.
func (s *MetricsService) RecordCacheHit() {
	s.cacheHits.Inc()
}

// RecordCacheMiss counts a Redis miss.
func (s *MetricsService) RecordCacheMiss() {
	s.cacheMisses.Inc()
}

// RecordSlotConflict counts a rejected slot write on the given axis.
func (s *MetricsService) RecordSlotConflict(axis string) {
	s.slotConflictsTotal.WithLabelValues(axis).Inc()
}

// RecordMeritListGenerated counts a generated merit list snapshot.
func (s *MetricsService) RecordMeritListGenerated() {
	s.meritListsGenerated.Inc()
}

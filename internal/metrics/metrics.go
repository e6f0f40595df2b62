package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaintdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "complaintdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	complaintsEscalated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaintdesk_complaints_escalated_total",
		Help: "Complaints promoted to Critical by the staleness rule",
	}, []string{"source"})

	auditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaintdesk_audit_writes_total",
		Help: "Audit log writes by result",
	}, []string{"result"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaintdesk_events_published_total",
		Help: "Audit events published to the message bus by result",
	}, []string{"result"})

	liveFeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "complaintdesk_livefeed_clients",
		Help: "Connected live log feed clients on this instance",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveEscalation adds n escalated complaints for the given trigger (list, endpoint, scheduler).
func ObserveEscalation(source string, n int) {
	if n <= 0 {
		return
	}
	complaintsEscalated.WithLabelValues(source).Add(float64(n))
}

func ObserveAuditWrite(result string) {
	auditWrites.WithLabelValues(result).Inc()
}

func ObserveEventPublish(result string) {
	eventsPublished.WithLabelValues(result).Inc()
}

func SetLiveFeedClients(count int) {
	if count < 0 {
		count = 0
	}
	liveFeedClients.Set(float64(count))
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

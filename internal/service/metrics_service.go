package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	windowRejects   *prometheus.CounterVec
	capRejects      prometheus.Counter
	otpIssued       prometheus.Counter
	uploadsTotal    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	windowRejects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "election_window_rejections_total",
		Help: "Submissions rejected because their window was closed",
	}, []string{"window"})

	capRejects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "election_capacity_rejections_total",
		Help: "Supporter accepts rejected because the role cap was full",
	})

	otpIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "election_otp_issued_total",
		Help: "Registration OTP codes issued",
	})

	uploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "election_manifesto_uploads_total",
		Help: "Manifesto uploads by phase",
	}, []string{"phase"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, windowRejects, capRejects, otpIssued, uploadsTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		windowRejects:   windowRejects,
		capRejects:      capRejects,
		otpIssued:       otpIssued,
		uploadsTotal:    uploadsTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordWindowRejection counts a submission turned away by a closed window.
func (m *MetricsService) RecordWindowRejection(window string) {
	if m == nil {
		return
	}
	m.windowRejects.WithLabelValues(window).Inc()
}

// RecordCapacityRejection counts a supporter accept lost to a full slot.
func (m *MetricsService) RecordCapacityRejection() {
	if m == nil {
		return
	}
	m.capRejects.Inc()
}

// RecordOTPIssued counts an issued registration code.
func (m *MetricsService) RecordOTPIssued() {
	if m == nil {
		return
	}
	m.otpIssued.Inc()
}

// RecordManifestoUpload counts an upload for a phase.
func (m *MetricsService) RecordManifestoUpload(phase string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(phase).Inc()
}

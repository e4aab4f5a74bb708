package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	lessonResults   *prometheus.CounterVec
	chatReplies     *prometheus.CounterVec
	rateLimitedHits prometheus.Counter
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "endpoint"},
		),
		lessonResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nibble_lesson_results_total",
				Help: "Lesson content served, by outcome",
			},
			[]string{"outcome"},
		),
		chatReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nibble_chat_replies_total",
				Help: "Tutor replies, by outcome",
			},
			[]string{"outcome"},
		),
		rateLimitedHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nibble_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.lessonResults,
		m.chatReplies,
		m.rateLimitedHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) observeLesson(cached, fromFallback bool) {
	outcome := "generated"
	switch {
	case cached:
		outcome = "cached"
	case fromFallback:
		outcome = "fallback"
	}
	m.lessonResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeChat(fromFallback bool) {
	outcome := "ok"
	if fromFallback {
		outcome = "fallback"
	}
	m.chatReplies.WithLabelValues(outcome).Inc()
}

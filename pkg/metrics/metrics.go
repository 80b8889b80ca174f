package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Entropy136/intention-test-extension/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	namespace      string
	httpReqCnt     *prometheus.CounterVec
	httpDur        *prometheus.HistogramVec
	httpInfl       *prometheus.GaugeVec
	generationCnt  *prometheus.CounterVec
	generationDur  *prometheus.HistogramVec
	sessionsActive prometheus.GaugeFunc
}

// New builds the prometheus registry. activeSessions is sampled on every
// scrape; wire it to the session registry's Len.
func New(cfg config.MetricsConfig, activeSessions func() int) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	generationCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "generations_total"}, []string{"status"})
	generationDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "generation_duration_seconds", Buckets: cfg.Buckets}, []string{"status"})
	r.MustRegister(generationCnt, generationDur)

	sessionsActive := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: ns, Name: "sessions_active"}, func() float64 {
		if activeSessions == nil {
			return 0
		}
		return float64(activeSessions())
	})
	r.MustRegister(sessionsActive)

	return &Metrics{
		registry:       r,
		namespace:      ns,
		httpReqCnt:     httpReqCnt,
		httpDur:        httpDur,
		httpInfl:       httpInfl,
		generationCnt:  generationCnt,
		generationDur:  generationDur,
		sessionsActive: sessionsActive,
	}
}

// GenerationDone records one finished generation with its terminal status.
func (m *Metrics) GenerationDone(status string, since time.Time) {
	m.generationCnt.WithLabelValues(status).Inc()
	m.generationDur.WithLabelValues(status).Observe(time.Since(since).Seconds())
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

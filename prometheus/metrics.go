package prometheus

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var OnboardingSuccessCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "onboarding_success_total",
		Help: "Total number of merchant onboarding runs that succeeded",
	},
)

var OnboardingFailureCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onboarding_failure_total",
		Help: "Total number of merchant onboarding runs that failed, by stage",
	},
	[]string{"stage"},
)

var CompensationCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onboarding_compensation_total",
		Help: "Total number of rollback compensations invoked, by step and result",
	},
	[]string{"step", "result"},
)

var StageDurationHistogram = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "onboarding_stage_duration_seconds",
		Help:    "Duration of onboarding saga stages in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"stage"},
)

var RequestDurationHistogram = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "onboarding_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

func init() {
	prometheus.MustRegister(OnboardingSuccessCounter)
	prometheus.MustRegister(OnboardingFailureCounter)
	prometheus.MustRegister(CompensationCounter)
	prometheus.MustRegister(StageDurationHistogram)
	prometheus.MustRegister(RequestDurationHistogram)
}

func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is an Echo middleware function that records HTTP request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			method := c.Request().Method
			path := c.Path()

			duration := time.Since(start).Seconds()
			RequestDurationHistogram.WithLabelValues(method, path).Observe(duration)

			return err
		}
	}
}

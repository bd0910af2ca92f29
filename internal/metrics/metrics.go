package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow operations by outcome (ok, not_found, forbidden, invalid_state, unavailable, error)
	WorkflowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampus_workflow_operations_total",
			Help: "Project/proposal workflow operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampus_notifications_total",
			Help: "Notifications dispatched by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ReconciledRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampus_reconcile_rows_total",
			Help: "Rows changed by reconcile jobs",
		},
		[]string{"job"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kampus_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)
)

func RecordWorkflow(operation, outcome string) {
	WorkflowOperations.WithLabelValues(operation, outcome).Inc()
}

func RecordNotification(kind, outcome string) {
	NotificationsDispatched.WithLabelValues(kind, outcome).Inc()
}

func RecordReconciled(job string, rows int64) {
	if rows > 0 {
		ReconciledRows.WithLabelValues(job).Add(float64(rows))
	}
}

// Middleware observes request latency labelled by route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		// fasthttp reuses request buffers; labels outlive the request.
		method := utils.CopyString(c.Method())
		route := utils.CopyString(c.Route().Path)
		HTTPRequestDuration.
			WithLabelValues(method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

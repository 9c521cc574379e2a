// Package metrics exposes Prometheus collectors for report generation and
// the HTTP surface.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

const namespace = "billing_reports"

// Collector records report and request metrics. It implements
// reports.Observer.
type Collector struct {
	reportDuration *prometheus.HistogramVec
	reportFailures *prometheus.CounterVec
	rowsExported   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector registers all collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		reportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Time spent generating a report",
				// Heavy exports run for minutes.
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"report", "format"},
		),
		reportFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_failures_total",
				Help:      "Reports that ended in a store error or timeout",
			},
			[]string{"report", "code"},
		),
		rowsExported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_exported_total",
				Help:      "Rows written to report responses",
			},
			[]string{"report"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveReport implements reports.Observer.
func (c *Collector) ObserveReport(report string, format reports.Format, elapsed time.Duration, rows int, err error) {
	c.reportDuration.WithLabelValues(report, string(format)).Observe(elapsed.Seconds())
	if rows > 0 {
		c.rowsExported.WithLabelValues(report).Add(float64(rows))
	}
	if err != nil {
		c.reportFailures.WithLabelValues(report, failureCode(err)).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func failureCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return apperror.CodeInternal
}

var _ reports.Observer = (*Collector)(nil)

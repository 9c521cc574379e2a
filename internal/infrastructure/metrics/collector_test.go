package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

func TestCollector_ObserveReport(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveReport("payments", reports.FormatCSV, 2*time.Second, 120, nil)
	c.ObserveReport("payments", reports.FormatJSON, time.Second, 0, nil)
	c.ObserveReport("payments", reports.FormatJSON, time.Minute,
		0, apperror.NewReportFailed("payments", context.DeadlineExceeded))
	c.ObserveReport("invoices", reports.FormatCSV, time.Second, 0, errors.New("boom"))

	assert.Equal(t, 120.0, testutil.ToFloat64(c.rowsExported.WithLabelValues("payments")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reportFailures.WithLabelValues("payments", apperror.CodeTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reportFailures.WithLabelValues("invoices", apperror.CodeInternal)))
	assert.Equal(t, 3, testutil.CollectAndCount(c.reportDuration))
}

func TestCollector_ObserveRequest(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveRequest("GET", "/api/v1/reports/:name", 200, 10*time.Millisecond)
	c.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/v1/reports/:name", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

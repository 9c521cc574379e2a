package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// fakeSource serves a fixed, already-filtered result in order.
type fakeSource struct {
	docs     []document.Doc
	countErr error
	eachErr  error
	calls    atomic.Int32
}

func (f *fakeSource) Count(ctx context.Context, p Params) (int64, error) {
	f.calls.Add(1)
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs)), nil
}

func (f *fakeSource) Each(ctx context.Context, p Params, window *Window, fn func(document.Doc) error) error {
	f.calls.Add(1)
	docs := f.docs
	if window != nil {
		lo := min(window.Skip, int64(len(docs)))
		hi := min(lo+window.Limit, int64(len(docs)))
		docs = docs[lo:hi]
	}
	for i, d := range docs {
		if f.eachErr != nil && i == 1 {
			return f.eachErr
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	if f.eachErr != nil && len(docs) <= 1 {
		return f.eachErr
	}
	return nil
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveReport(report string, format Format, _ time.Duration, rows int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, fmt.Sprintf("%s/%s/%d/%v", report, format, rows, err != nil))
}

func numberedDocs(n int) []document.Doc {
	docs := make([]document.Doc, n)
	for i := range docs {
		docs[i] = document.Doc{"number": fmt.Sprintf("N-%02d", i+1), "amount": "10.005"}
	}
	return docs
}

var numberColumns = []Column{
	{Key: "number", Label: "Number", Value: text("number")},
	{Key: "amount", Label: "Amount", Value: money("amount")},
}

func newTestService(obs Observer, defs ...*Definition) *Service {
	c := &Catalog{cfg: DefaultCatalogConfig(), defs: make(map[string]*Definition)}
	for _, d := range defs {
		c.add(d)
	}
	return NewService(c, obs)
}

func prepare(t *testing.T, s *Service, name string, raw RawParams) *Request {
	t.Helper()
	req, err := s.Prepare(name, raw)
	require.NoError(t, err)
	return req
}

func TestService_PageWindow(t *testing.T) {
	src := &fakeSource{docs: numberedDocs(25)}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})

	page, err := svc.Page(context.Background(), prepare(t, svc, "numbers", RawParams{Page: "2", Limit: "10"}))
	require.NoError(t, err)

	require.Len(t, page.Data, 10)
	first, _ := page.Data[0].Get("number")
	last, _ := page.Data[9].Get("number")
	assert.Equal(t, "N-11", first)
	assert.Equal(t, "N-20", last)
	assert.Equal(t, Pagination{Total: 25, Page: 2, Limit: 10, TotalPages: 3}, page.Pagination)
	assert.Equal(t, MessageOK, page.Message)
}

// Concatenating every page reproduces the full export in the same order.
func TestService_PagesConcatenateToExport(t *testing.T) {
	src := &fakeSource{docs: numberedDocs(23)}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})
	ctx := context.Background()

	var paged []any
	first, err := svc.Page(ctx, prepare(t, svc, "numbers", RawParams{Page: "1", Limit: "7"}))
	require.NoError(t, err)
	for page := 1; page <= first.Pagination.TotalPages; page++ {
		res, err := svc.Page(ctx, prepare(t, svc, "numbers", RawParams{Page: fmt.Sprint(page), Limit: "7"}))
		require.NoError(t, err)
		for _, r := range res.Data {
			v, _ := r.Get("number")
			paged = append(paged, v)
		}
	}

	rows, err := svc.Rows(ctx, prepare(t, svc, "numbers", RawParams{Format: "csv"}))
	require.NoError(t, err)
	var full []any
	for _, r := range rows {
		v, _ := r.Get("number")
		full = append(full, v)
	}

	assert.Equal(t, int64(23), first.Pagination.Total)
	assert.Equal(t, 4, first.Pagination.TotalPages)
	assert.Equal(t, full, paged)
}

func TestService_PageBeyondLastIsEmpty(t *testing.T) {
	src := &fakeSource{docs: numberedDocs(5)}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})

	page, err := svc.Page(context.Background(), prepare(t, svc, "numbers", RawParams{Page: "9"}))
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(5), page.Pagination.Total)
}

func TestService_EmptyResultIsSuccess(t *testing.T) {
	src := &fakeSource{}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})
	ctx := context.Background()

	page, err := svc.Page(ctx, prepare(t, svc, "numbers", RawParams{}))
	require.NoError(t, err)
	assert.Equal(t, MessageEmpty, page.Message)
	assert.NotNil(t, page.Data)
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 10, TotalPages: 0}, page.Pagination)

	var buf bytes.Buffer
	n, err := svc.WriteCSV(ctx, prepare(t, svc, "numbers", RawParams{Format: "csv"}), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "Number,Amount\n", buf.String())
}

// CSV rows and JSON rows carry the same values for the same filters.
func TestService_CSVMatchesJSON(t *testing.T) {
	src := &fakeSource{docs: numberedDocs(3)}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})
	ctx := context.Background()

	page, err := svc.Page(ctx, prepare(t, svc, "numbers", RawParams{Limit: "100"}))
	require.NoError(t, err)
	want, err := BufferCSV(numberColumns, page.Data)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.WriteCSV(ctx, prepare(t, svc, "numbers", RawParams{Format: "csv"}), &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, want, buf.String())
	assert.Contains(t, buf.String(), "N-01,10.01\n")
}

func TestService_Prepare(t *testing.T) {
	src := &fakeSource{}
	svc := newTestService(nil,
		&Definition{Name: "numbers", Columns: numberColumns, Source: src},
		&Definition{Name: "dated", Columns: numberColumns, Source: src, RequireDates: true},
		&Definition{Name: "legacy", Columns: numberColumns, Source: src, LegacyCSV: true},
	)

	t.Run("unknown report", func(t *testing.T) {
		_, err := svc.Prepare("missing", RawParams{})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("dates required", func(t *testing.T) {
		_, err := svc.Prepare("dated", RawParams{StartDate: "2024-01-01"})
		require.Error(t, err)
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, "endDate", appErr.Details["field"])
	})

	t.Run("legacy reports are csv", func(t *testing.T) {
		req, err := svc.Prepare("legacy", RawParams{Format: "json"})
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, req.Format())
		assert.Equal(t, "legacy-2024-05-01.csv", req.Filename(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	})

	assert.Zero(t, src.calls.Load(), "validation must not reach the store")
}

func TestService_StoreFailures(t *testing.T) {
	tests := []struct {
		name     string
		src      *fakeSource
		wantCode string
		status   int
	}{
		{
			name:     "count fails",
			src:      &fakeSource{docs: numberedDocs(3), countErr: errors.New("connection reset")},
			wantCode: apperror.CodeReportFailed,
			status:   http.StatusInternalServerError,
		},
		{
			name:     "page times out",
			src:      &fakeSource{docs: numberedDocs(3), eachErr: context.DeadlineExceeded},
			wantCode: apperror.CodeTimeout,
			status:   http.StatusGatewayTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			svc := newTestService(obs, &Definition{Name: "numbers", Columns: numberColumns, Source: tt.src})

			_, err := svc.Page(context.Background(), prepare(t, svc, "numbers", RawParams{}))
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.Equal(t, "numbers", appErr.Details["report"])
			assert.NotContains(t, appErr.Message, "connection reset")
			assert.Equal(t, []string{"numbers/json/0/true"}, obs.calls)
		})
	}
}

func TestService_CSVFailureMidStream(t *testing.T) {
	src := &fakeSource{docs: numberedDocs(3), eachErr: errors.New("cursor killed")}
	svc := newTestService(nil, &Definition{Name: "numbers", Columns: numberColumns, Source: src})

	var buf bytes.Buffer
	n, err := svc.WriteCSV(context.Background(), prepare(t, svc, "numbers", RawParams{Format: "csv"}), &buf)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, apperror.CodeReportFailed, err.(*apperror.AppError).Code)
}

func TestService_ObservesSuccess(t *testing.T) {
	obs := &recordingObserver{}
	src := &fakeSource{docs: numberedDocs(2)}
	svc := newTestService(obs, &Definition{Name: "numbers", Columns: numberColumns, Source: src})

	var buf bytes.Buffer
	_, err := svc.WriteCSV(context.Background(), prepare(t, svc, "numbers", RawParams{Format: "csv"}), &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"numbers/csv/2/false"}, obs.calls)
}

func TestService_Definitions(t *testing.T) {
	svc := newTestService(nil,
		&Definition{Name: "b", Title: "B", Columns: numberColumns},
		&Definition{Name: "a", Title: "A", Columns: numberColumns, LegacyCSV: true},
	)
	defs := svc.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].Name)
	assert.True(t, defs[0].CSVOnly)
	assert.Equal(t, []string{"Number", "Amount"}, defs[1].Columns)
}

package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

// Observer receives the outcome of every report execution.
type Observer interface {
	ObserveReport(report string, format Format, elapsed time.Duration, rows int, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveReport(string, Format, time.Duration, int, error) {}

// Messages of the JSON envelope.
const (
	MessageOK    = "Report generated successfully"
	MessageEmpty = "No records found"
)

// Service executes catalog reports.
type Service struct {
	catalog  *Catalog
	observer Observer
}

// NewService creates a reports service. A nil observer disables instrumentation.
func NewService(catalog *Catalog, observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{catalog: catalog, observer: observer}
}

// Request is a validated report invocation.
type Request struct {
	Definition *Definition
	Params     Params
}

// Format returns the effective output format.
func (r *Request) Format() Format { return r.Params.Format }

// Filename returns the attachment name of a CSV export.
func (r *Request) Filename(now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", r.Definition.Name, now.Format(dateLayout))
}

// Definitions lists the catalog.
func (s *Service) Definitions() []Summary {
	defs := s.catalog.All()
	out := make([]Summary, len(defs))
	for i, d := range defs {
		out[i] = d.Summary()
	}
	return out
}

// Prepare resolves the report and validates its parameters. Nothing is
// queried: invalid requests never reach the store.
func (s *Service) Prepare(name string, raw RawParams) (*Request, error) {
	def, ok := s.catalog.Get(name)
	if !ok {
		return nil, apperror.NewNotFound("report", name)
	}
	p, err := ParseParams(raw)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(p); err != nil {
		return nil, err
	}
	p.Format = def.FormatFor(p)
	return &Request{Definition: def, Params: p}, nil
}

// Page runs the data window and the total count concurrently over the same
// filters and returns the JSON envelope.
func (s *Service) Page(ctx context.Context, req *Request) (*Page, error) {
	start := time.Now()
	def, p := req.Definition, req.Params

	window := p.Window()
	if window == nil {
		window = &Window{Skip: int64(p.Page-1) * int64(p.Limit), Limit: int64(p.Limit)}
	}

	var total int64
	rows := make([]Row, 0, window.Limit)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := def.Source.Count(gctx, p)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		err := def.Source.Each(gctx, p, window, func(d document.Doc) error {
			rows = append(rows, Project(def.Columns, d))
			return nil
		})
		if err != nil {
			return fmt.Errorf("page: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, req, start, 0, err)
	}

	s.observer.ObserveReport(def.Name, FormatJSON, time.Since(start), len(rows), nil)

	msg := MessageOK
	if total == 0 {
		msg = MessageEmpty
	}
	return &Page{
		Message:    msg,
		Data:       rows,
		Pagination: NewPagination(total, p.Page, p.Limit),
	}, nil
}

// Rows returns the full, unpaginated result.
func (s *Service) Rows(ctx context.Context, req *Request) ([]Row, error) {
	start := time.Now()
	def := req.Definition

	rows := []Row{}
	err := def.Source.Each(ctx, req.Params, nil, func(d document.Doc) error {
		rows = append(rows, Project(def.Columns, d))
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, req, start, len(rows), err)
	}
	s.observer.ObserveReport(def.Name, req.Params.Format, time.Since(start), len(rows), nil)
	return rows, nil
}

// WriteCSV streams the full result as CSV. The header is always written, so
// an empty result yields a header-only document. It returns the number of
// data rows written; on error part of the output may already be on w.
func (s *Service) WriteCSV(ctx context.Context, req *Request, w io.Writer) (int, error) {
	start := time.Now()
	def := req.Definition

	cw := NewCSVWriter(w, def.Columns)
	err := def.Source.Each(ctx, req.Params, nil, func(d document.Doc) error {
		return cw.Write(Project(def.Columns, d))
	})
	if err == nil {
		err = cw.Flush()
	}
	if err != nil {
		return cw.Rows(), s.fail(ctx, req, start, cw.Rows(), err)
	}

	s.observer.ObserveReport(def.Name, FormatCSV, time.Since(start), cw.Rows(), nil)
	return cw.Rows(), nil
}

// fail logs the store diagnostic with the filters needed to reproduce it and
// returns the generic client-facing error.
func (s *Service) fail(ctx context.Context, req *Request, start time.Time, rows int, err error) error {
	name := req.Definition.Name

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		fields := append([]any{"report", name, "rows", rows, "error", err}, req.Params.LogFields()...)
		logger.Error(ctx, "report generation failed", fields...)
		appErr = apperror.NewReportFailed(name, err)
	}
	s.observer.ObserveReport(name, req.Params.Format, time.Since(start), rows, appErr)
	return appErr
}

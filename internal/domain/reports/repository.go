package reports

import (
	"context"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// Repository executes aggregation plans against the CRM document store.
// Implementations are read-only and hold no per-request state.
type Repository interface {
	// Count returns the number of rows the plan produces.
	Count(ctx context.Context, plan Plan) (int64, error)

	// Each streams the plan's rows (or a window of them) to fn in pipeline
	// order. An error from fn or from the cursor stops iteration and is returned.
	Each(ctx context.Context, plan Plan, window *Window, fn func(document.Doc) error) error
}

// MTVDataset names a table-backed dataset in the MTV store.
type MTVDataset string

const (
	MTVUsers     MTVDataset = "users"
	MTVReferrals MTVDataset = "referrals"
)

// MTVQuery filters an MTV dataset.
type MTVQuery struct {
	Dataset MTVDataset
	Search  string
	Dates   DateRange
}

// MTVRepository reads user/referral data from the secondary MTV store.
type MTVRepository interface {
	CountMTV(ctx context.Context, q MTVQuery) (int64, error)
	EachMTV(ctx context.Context, q MTVQuery, window *Window, fn func(document.Doc) error) error
}

// Source produces the rows of one report. Count and Each must apply
// identical filters.
type Source interface {
	Count(ctx context.Context, p Params) (int64, error)
	Each(ctx context.Context, p Params, window *Window, fn func(document.Doc) error) error
}

// PlanFunc builds the aggregation plan for a request.
type PlanFunc func(p Params) (Plan, error)

// pipelineSource runs a per-request Plan on the CRM store.
type pipelineSource struct {
	repo  Repository
	build PlanFunc
}

func (s pipelineSource) Count(ctx context.Context, p Params) (int64, error) {
	plan, err := s.build(p)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, plan)
}

func (s pipelineSource) Each(ctx context.Context, p Params, window *Window, fn func(document.Doc) error) error {
	plan, err := s.build(p)
	if err != nil {
		return err
	}
	return s.repo.Each(ctx, plan, window, fn)
}

// mtvSource reads one MTV dataset.
type mtvSource struct {
	repo    MTVRepository
	dataset MTVDataset
}

func (s mtvSource) query(p Params) MTVQuery {
	return MTVQuery{Dataset: s.dataset, Search: p.Search, Dates: p.Dates}
}

func (s mtvSource) Count(ctx context.Context, p Params) (int64, error) {
	return s.repo.CountMTV(ctx, s.query(p))
}

func (s mtvSource) Each(ctx context.Context, p Params, window *Window, fn func(document.Doc) error) error {
	return s.repo.EachMTV(ctx, s.query(p), window, fn)
}

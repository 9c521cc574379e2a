package reports

import (
	"math"
	"strconv"
	"strings"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
)

// Format selects the output mode of a report request.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 1000
)

// RawParams are the query parameters exactly as the caller supplied them.
type RawParams struct {
	Page            string
	Limit           string
	Search          string
	StartDate       string
	EndDate         string
	Atoll           string
	Island          string
	ServiceProvider string
	Format          string
}

// Params are validated, normalized report filters.
type Params struct {
	Page            int
	Limit           int
	Search          string
	Dates           DateRange
	Atoll           string
	Island          string
	ServiceProvider string
	Format          Format
}

// Window is a page slice over the result set.
type Window struct {
	Skip  int64
	Limit int64
}

// Window returns the page slice for JSON requests and nil for full exports.
func (p Params) Window() *Window {
	if p.Format == FormatCSV {
		return nil
	}
	return &Window{
		Skip:  int64(p.Page-1) * int64(p.Limit),
		Limit: int64(p.Limit),
	}
}

// LogFields renders the filters as logger key/value pairs.
func (p Params) LogFields() []any {
	fields := []any{
		"page", p.Page,
		"limit", p.Limit,
		"format", string(p.Format),
	}
	if p.Search != "" {
		fields = append(fields, "search", p.Search)
	}
	if p.Dates.From != nil {
		fields = append(fields, "start_date", p.Dates.From.Format(dateLayout))
	}
	if p.Dates.To != nil {
		fields = append(fields, "end_date", p.Dates.To.Format(dateLayout))
	}
	if p.Atoll != "" {
		fields = append(fields, "atoll", p.Atoll)
	}
	if p.Island != "" {
		fields = append(fields, "island", p.Island)
	}
	if p.ServiceProvider != "" {
		fields = append(fields, "service_provider", p.ServiceProvider)
	}
	return fields
}

// ParseParams validates raw query parameters. Bad input fails the request
// instead of silently dropping the filter.
func ParseParams(raw RawParams) (Params, error) {
	p := Params{
		Page:            DefaultPage,
		Limit:           DefaultLimit,
		Search:          strings.TrimSpace(raw.Search),
		Atoll:           strings.TrimSpace(raw.Atoll),
		Island:          strings.TrimSpace(raw.Island),
		ServiceProvider: strings.TrimSpace(raw.ServiceProvider),
		Format:          FormatJSON,
	}

	var err error
	if p.Page, err = parsePositive("page", raw.Page, DefaultPage); err != nil {
		return Params{}, err
	}
	if p.Limit, err = parsePositive("limit", raw.Limit, DefaultLimit); err != nil {
		return Params{}, err
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	// The page offset must fit the store's skip counter.
	if int64(p.Page-1) > math.MaxInt64/int64(p.Limit) {
		return Params{}, apperror.NewInvalidField("page", "is too large")
	}

	switch f := Format(strings.ToLower(strings.TrimSpace(raw.Format))); f {
	case "":
	case FormatJSON, FormatCSV:
		p.Format = f
	default:
		return Params{}, apperror.NewInvalidField("format", "must be json or csv")
	}

	if p.Dates, err = ParseDateRange(raw.StartDate, raw.EndDate); err != nil {
		return Params{}, err
	}
	return p, nil
}

func parsePositive(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.NewInvalidField(field, "must be a positive integer")
	}
	return n, nil
}

// RequireDates fails when either bound of the range is missing.
func (p Params) RequireDates() error {
	if p.Dates.From == nil {
		return apperror.NewInvalidField("startDate", "is required for this report")
	}
	if p.Dates.To == nil {
		return apperror.NewInvalidField("endDate", "is required for this report")
	}
	return nil
}

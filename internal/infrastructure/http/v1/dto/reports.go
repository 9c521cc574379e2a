package dto

import (
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

// ReportQuery carries the report filters as sent. Values stay strings so the
// domain can reject malformed input with field-level messages.
type ReportQuery struct {
	Page            string `form:"page"`
	Limit           string `form:"limit"`
	Search          string `form:"search"`
	StartDate       string `form:"startDate"`
	EndDate         string `form:"endDate"`
	Atoll           string `form:"atoll"`
	Island          string `form:"island"`
	ServiceProvider string `form:"serviceProvider"`
	Format          string `form:"format"`
}

// ToRaw converts the query to domain parameters.
func (q ReportQuery) ToRaw() reports.RawParams {
	return reports.RawParams{
		Page:            q.Page,
		Limit:           q.Limit,
		Search:          q.Search,
		StartDate:       q.StartDate,
		EndDate:         q.EndDate,
		Atoll:           q.Atoll,
		Island:          q.Island,
		ServiceProvider: q.ServiceProvider,
		Format:          q.Format,
	}
}

// ReportListResponse lists the catalog.
type ReportListResponse struct {
	Reports []reports.Summary `json:"reports"`
}

// IslandQuery filters the island listing.
type IslandQuery struct {
	Atoll string `form:"atoll"`
}

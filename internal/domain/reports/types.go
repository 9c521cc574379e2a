// Package reports builds, executes and serializes the billing report catalog.
package reports

// Pagination describes the window a JSON page was cut from.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes totalPages = ceil(total / limit).
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Page is the JSON envelope of a paginated report.
type Page struct {
	Message    string     `json:"message"`
	Data       []Row      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Summary describes a catalog entry for listing.
type Summary struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Columns      []string `json:"columns"`
	CSVOnly      bool     `json:"csvOnly"`
	RequireDates bool     `json:"requireDates"`
}

// Summary returns the listing entry of d.
func (d *Definition) Summary() Summary {
	labels := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		labels[i] = c.Label
	}
	return Summary{
		Name:         d.Name,
		Title:        d.Title,
		Columns:      labels,
		CSVOnly:      d.LegacyCSV,
		RequireDates: d.RequireDates,
	}
}

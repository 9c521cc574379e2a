package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

func serviceRequestColumns() []Column {
	return []Column{
		{Key: "number", Label: "Number", Value: text("number")},
		{Key: "createdDate", Label: "Created Date", Value: date("created_date", LayoutSpace, Maldives)},
		{Key: "status", Label: "Status", Value: textOrNA("status.name")},
		{Key: "priority", Label: "Priority", Value: textOrNA("priority.name")},
		{Key: "queue", Label: "Queue", Value: textOrNA("queue.name")},
		{Key: "owner", Label: "Owner", Value: textOrNA("owner.name")},
		{Key: "ownerTeam", Label: "Owner Team", Value: textOrNA("owner_team.name")},
		{Key: "contactId", Label: "Contact ID", Value: text(contactAlias + ".contact_id")},
		{Key: "customerName", Label: "Customer Name", Value: contactName(contactAlias)},
		{Key: "phone", Label: "Phone", Value: text(contactAlias + ".phone")},
	}
}

func serviceRequestPlan(open bool) PlanFunc {
	return func(p Params) (Plan, error) {
		match := Merge(SearchMatch(p.Search), p.Dates.Match("created_date"))
		if open {
			match["resolved"] = bson.M{"$ne": true}
		}
		return Plan{
			Collection: CollServiceRequests,
			Match:      match,
			Joins:      []Join{contactJoin("contact_id")},
			JoinMatch:  ContactFilters(contactAlias, p),
			Sort:       descending("created_date"),
		}, nil
	}
}

func (c *Catalog) registerSupportReports() {
	c.add(&Definition{
		Name:         "service-requests",
		Title:        "Service Requests",
		RequireDates: true,
		Columns: append(serviceRequestColumns(),
			Column{Key: "closedDate", Label: "Closed Date", Value: date("actual_close_date", LayoutSpace, Maldives)},
			Column{Key: "resolved", Label: "Resolved", Value: func(d document.Doc) any { return d.Bool("resolved") }},
			Column{Key: "description", Label: "Description", Value: text("description")},
			Column{Key: "response", Label: "Response", Value: text("response")},
		),
		Source: c.pipeline(false, serviceRequestPlan(false)),
	})

	c.add(&Definition{
		Name:  "service-request-aging",
		Title: "Open Service Request Aging",
		Columns: append(serviceRequestColumns(),
			Column{Key: "ageDays", Label: "Age (Days)", Value: func(d document.Doc) any {
				days, ok := ageDays(d, c.cfg.Now())
				if !ok {
					return ""
				}
				return days
			}},
			Column{Key: "ageBucket", Label: "Age Bucket", Value: func(d document.Doc) any {
				days, ok := ageDays(d, c.cfg.Now())
				if !ok {
					return NotAvailable
				}
				return AgeBucket(days)
			}},
		),
		Source: c.pipeline(false, serviceRequestPlan(true)),
	})
}

func ageDays(d document.Doc, now time.Time) (int64, bool) {
	created, ok := d.Int64("created_date")
	if !ok || created <= 0 {
		return 0, false
	}
	days := int64(now.Sub(time.Unix(created, 0)) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return days, true
}

// AgeBucket groups an age in whole days.
func AgeBucket(days int64) string {
	switch {
	case days <= 7:
		return "0-7 days"
	case days <= 30:
		return "8-30 days"
	case days <= 60:
		return "31-60 days"
	default:
		return "60+ days"
	}
}

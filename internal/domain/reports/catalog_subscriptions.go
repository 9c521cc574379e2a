package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// Service lifecycle states.
const (
	stateEffective    = "EFFECTIVE"
	stateNotEffective = "NOT_EFFECTIVE"
)

const deviceAlias = "device"

// deviceJoin attaches every device owned by the row's contact.
func deviceJoin(localField string) Join {
	return Join{
		From:         CollDevices,
		LocalField:   localField,
		ForeignField: "owned_by",
		As:           deviceAlias,
		Cardinality:  OneToMany,
	}
}

// serviceQuery describes one subscription-service report: which lifecycle
// states qualify and which service term date the range applies to.
type serviceQuery struct {
	states    []string
	dateField string
}

// subscriptionPlan expands subscriptions into one row per service. Date and
// state predicates are applied twice: as $elemMatch before the expansion to
// prune parents, and per element after it so siblings outside the range are
// not emitted.
func (q serviceQuery) plan(p Params) (Plan, error) {
	termField := "service_terms." + q.dateField

	elem := bson.M{}
	after := bson.M{}
	if !p.Dates.IsZero() {
		elem[termField] = p.Dates.Bounds()
		after["services."+termField] = p.Dates.Bounds()
	}
	switch len(q.states) {
	case 0:
	case 1:
		elem["state"] = q.states[0]
		after["services.state"] = q.states[0]
	default:
		elem["state"] = bson.M{"$in": q.states}
		after["services.state"] = bson.M{"$in": q.states}
	}

	var exists bson.M
	if len(elem) > 0 {
		exists = bson.M{"services": bson.M{"$elemMatch": elem}}
	}

	return Plan{
		Collection:   CollSubscriptions,
		Match:        SearchMatch(p.Search),
		Expand:       "services",
		ExpandExists: exists,
		ExpandMatch:  after,
		Joins: []Join{
			contactJoin("contact_id"),
			deviceJoin("contact_id"),
		},
		JoinMatch: ContactFilters(contactAlias, p),
		Sort:      ascending("contact_id"),
	}, nil
}

func subscriptionColumns() []Column {
	return columns(
		contactColumns(contactAlias),
		[]Column{
			{Key: "package", Label: "Package", Value: text("services.product.name")},
			{Key: "status", Label: "Status", Value: text("services.state")},
			{Key: "price", Label: "Price", Value: money("services.price_terms.price")},
			{Key: "startDate", Label: "Start Date", Value: date("services.service_terms.start_date", LayoutDash, time.UTC)},
			{Key: "endDate", Label: "End Date", Value: date("services.service_terms.end_date", LayoutDash, time.UTC)},
			{Key: "deviceCode", Label: "Device Code", Value: customField(deviceAlias+".custom_fields", "device_code", "value")},
			{Key: "device", Label: "Device", Value: func(d document.Doc) any {
				return JoinValues(d.Strings(deviceAlias+".product.name"), ", ")
			}},
		},
	)
}

func (c *Catalog) registerSubscriptionReports() {
	c.add(&Definition{
		Name:    "subscriptions",
		Title:   "Subscriptions",
		Columns: subscriptionColumns(),
		Source:  c.pipeline(true, serviceQuery{dateField: "start_date"}.plan),
	})
	c.add(&Definition{
		Name:    "active-subscriptions",
		Title:   "Active Subscriptions",
		Columns: subscriptionColumns(),
		Source:  c.pipeline(true, serviceQuery{states: []string{stateEffective}, dateField: "start_date"}.plan),
	})
	c.add(&Definition{
		Name:    "inactive-subscriptions",
		Title:   "Inactive Subscriptions",
		Columns: subscriptionColumns(),
		Source:  c.pipeline(true, serviceQuery{states: []string{stateNotEffective}, dateField: "start_date"}.plan),
	})
	c.add(&Definition{
		Name:    "expiring-services",
		Title:   "Expiring Services",
		Columns: subscriptionColumns(),
		Source:  c.pipeline(true, serviceQuery{states: []string{stateEffective}, dateField: "end_date"}.plan),
	})

	c.add(&Definition{
		Name:  "devices",
		Title: "Devices",
		Columns: columns(
			[]Column{
				{Key: "deviceCode", Label: "Device Code", Value: customField("custom_fields", "device_code", "value")},
				{Key: "serialNumber", Label: "Serial Number", Value: customField("custom_fields", "serial_number", "value")},
				{Key: "product", Label: "Product", Value: text("product.name")},
				{Key: "registeredOn", Label: "Registered On", Value: date("created_date", LayoutSpace, Maldives)},
			},
			contactColumns(contactAlias),
		),
		Source: c.pipeline(false, devicesPlan),
	})
}

func devicesPlan(p Params) (Plan, error) {
	return Plan{
		Collection: CollDevices,
		Match:      Merge(SearchMatch(p.Search), p.Dates.Match("created_date")),
		Joins:      []Join{contactJoin("owned_by")},
		JoinMatch:  ContactFilters(contactAlias, p),
		Sort:       descending("created_date"),
	}, nil
}

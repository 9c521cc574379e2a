package reports

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

func (c *Catalog) registerContactReports() {
	c.add(&Definition{
		Name:  "customers",
		Title: "Customer Details",
		Columns: columns(
			contactColumns(""),
			[]Column{
				{Key: "address", Label: "Address", Value: contactAddress("")},
				{Key: "country", Label: "Country", Value: func(d document.Doc) any {
					return Alias(CountryAliases, d.String("address.country"))
				}},
				{Key: "tags", Label: "Tags", Value: func(d document.Doc) any {
					return JoinValues(d.Strings("tags.name"), ", ")
				}},
				{Key: "registeredOn", Label: "Registered On", Value: date("created_date", LayoutSpace, Maldives)},
			},
		),
		Source: c.pipeline(false, customersPlan),
	})

	c.add(&Definition{
		Name:  "customer-accounts",
		Title: "Customer Accounts",
		Columns: columns(
			contactColumns("")[:3],
			[]Column{
				{Key: "accountState", Label: "Account State", Value: textOrNA("account.state")},
				{Key: "currency", Label: "Currency", Value: textOrNA("account.currency")},
				{Key: "balance", Label: "Balance", Value: money("account.balance")},
				{Key: "creditLimit", Label: "Credit Limit", Value: money("account.credit_limit")},
				{Key: "serviceProvider", Label: "Service Provider", Value: customField("custom_fields", "service_provider", "value_label")},
			},
		),
		Source: c.pipeline(false, customersPlan),
	})

	c.add(&Definition{
		Name:  "contact-packages",
		Title: "Customer Packages",
		Columns: columns(
			contactColumns(""),
			[]Column{
				{Key: "packages", Label: "Packages", Value: func(d document.Doc) any {
					return JoinValues(d.Strings("subscriptions.services.product.name"), ", ")
				}},
				{Key: "activePackages", Label: "Active Packages", Value: func(d document.Doc) any {
					return JoinValues(serviceNames(d.Docs("subscriptions.services"), stateEffective), ", ")
				}},
				{Key: "serviceCount", Label: "Service Count", Value: func(d document.Doc) any {
					return int64(len(d.Docs("subscriptions.services")))
				}},
			},
		),
		Source: c.pipeline(true, contactPackagesPlan),
	})
}

func customersPlan(p Params) (Plan, error) {
	return Plan{
		Collection: CollContactProfiles,
		Match: Merge(
			SearchMatch(p.Search),
			p.Dates.Match("created_date"),
			ContactFilters("", p),
		),
		Sort: descending("created_date"),
	}, nil
}

// contactPackagesPlan flattens every subscription of a contact into one row.
func contactPackagesPlan(p Params) (Plan, error) {
	return Plan{
		Collection: CollContactProfiles,
		Match: Merge(
			SearchMatch(p.Search),
			p.Dates.Match("created_date"),
			ContactFilters("", p),
		),
		Joins: []Join{{
			From:         CollSubscriptions,
			LocalField:   "contact_id",
			ForeignField: "contact_id",
			As:           "subscriptions",
			Cardinality:  OneToMany,
		}},
		Stages: []bson.D{{{Key: "$project", Value: bson.M{
			"contact_id":                     1,
			"demographics":                   1,
			"phone":                          1,
			"address":                        1,
			"custom_fields":                  1,
			"created_date":                   1,
			"subscriptions.services.state":   1,
			"subscriptions.services.product": 1,
		}}}},
		Sort: ascending("contact_id"),
	}, nil
}

// serviceNames returns product names of services in the given state.
func serviceNames(services []document.Doc, state string) []string {
	var names []string
	for _, s := range services {
		if s.String("state") == state {
			names = append(names, s.String("product.name"))
		}
	}
	return names
}

package reports

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// CRM collections.
const (
	CollContactProfiles = "contactprofiles"
	CollSubscriptions   = "subscriptions"
	CollDevices         = "devices"
	CollOrders          = "orders"
	CollJournals        = "journals"
	CollEvents          = "events"
	CollServiceRequests = "servicerequests"
	CollDealers         = "medianet_dealers"
	CollAtolls          = "medianet_atolls"
	CollIslands         = "medianet_islands"
)

// Definition describes one named report.
type Definition struct {
	Name  string
	Title string

	Columns []Column

	// LegacyCSV reports only ever return CSV; the format parameter is ignored.
	LegacyCSV bool

	// RequireDates rejects requests without both startDate and endDate.
	RequireDates bool

	Source Source
}

// FormatFor returns the effective output format for p.
func (d *Definition) FormatFor(p Params) Format {
	if d.LegacyCSV {
		return FormatCSV
	}
	return p.Format
}

// Validate runs report-specific checks before any query executes.
func (d *Definition) Validate(p Params) error {
	if d.RequireDates {
		return p.RequireDates()
	}
	return nil
}

// CatalogConfig tunes execution limits of catalog pipelines.
type CatalogConfig struct {
	// DefaultTimeout is the server-side execution ceiling of ordinary reports.
	DefaultTimeout time.Duration
	// HeavyTimeout applies to reports over large collections; those also
	// allow disk-assisted execution.
	HeavyTimeout time.Duration
	// Now is the clock used by age-based columns.
	Now func() time.Time
}

// DefaultCatalogConfig returns production limits.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		DefaultTimeout: 60 * time.Second,
		HeavyTimeout:   600 * time.Second,
		Now:            time.Now,
	}
}

// Catalog is the set of named report definitions.
type Catalog struct {
	cfg  CatalogConfig
	crm  Repository
	defs map[string]*Definition
}

// NewCatalog builds every report over the given store handles. MTV reports
// are registered only when an MTV repository is supplied.
func NewCatalog(crm Repository, mtv MTVRepository, cfg CatalogConfig) *Catalog {
	def := DefaultCatalogConfig()
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = def.DefaultTimeout
	}
	if cfg.HeavyTimeout <= 0 {
		cfg.HeavyTimeout = def.HeavyTimeout
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}

	c := &Catalog{cfg: cfg, crm: crm, defs: make(map[string]*Definition)}
	c.registerContactReports()
	c.registerSubscriptionReports()
	c.registerBillingReports()
	c.registerSupportReports()
	c.registerDealerReports()
	if mtv != nil {
		c.registerMTVReports(mtv)
	}
	return c
}

func (c *Catalog) add(d *Definition) {
	c.defs[d.Name] = d
}

// Get looks up a report by name.
func (c *Catalog) Get(name string) (*Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// All returns every report sorted by name.
func (c *Catalog) All() []*Definition {
	out := make([]*Definition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// pipeline wraps a PlanFunc with the catalog's execution limits.
func (c *Catalog) pipeline(heavy bool, build PlanFunc) Source {
	return pipelineSource{
		repo: c.crm,
		build: func(p Params) (Plan, error) {
			plan, err := build(p)
			if err != nil {
				return Plan{}, err
			}
			if plan.MaxTime == 0 {
				plan.MaxTime = c.cfg.DefaultTimeout
				if heavy {
					plan.MaxTime = c.cfg.HeavyTimeout
				}
			}
			plan.AllowDiskUse = plan.AllowDiskUse || heavy
			return plan, nil
		},
	}
}

// --- shared joins and contact columns ---

const contactAlias = "contact"

// contactJoin joins the contact profile owning the row by contact_id.
func contactJoin(localField string) Join {
	return Join{
		From:         CollContactProfiles,
		LocalField:   localField,
		ForeignField: "contact_id",
		As:           contactAlias,
		Cardinality:  OneToOne,
	}
}

func field(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func contactName(prefix string) func(document.Doc) any {
	return func(d document.Doc) any {
		return FullName(
			d.String(field(prefix, "demographics.first_name")),
			d.String(field(prefix, "demographics.middle_name")),
			d.String(field(prefix, "demographics.last_name")),
		)
	}
}

func contactAddress(prefix string) func(document.Doc) any {
	return func(d document.Doc) any {
		return JoinValues([]string{
			d.String(field(prefix, "address.name")),
			d.String(field(prefix, "address.line1")),
			d.String(field(prefix, "address.line2")),
		}, ", ")
	}
}

func customField(path, key, attr string) func(document.Doc) any {
	return func(d document.Doc) any {
		return DocCustomField(d, path, key, attr)
	}
}

func text(path string) func(document.Doc) any {
	return func(d document.Doc) any { return d.String(path) }
}

func textOrNA(path string) func(document.Doc) any {
	return func(d document.Doc) any { return TextOr(d, path, NotAvailable) }
}

func money(path string) func(document.Doc) any {
	return func(d document.Doc) any { return MoneyAt(d, path) }
}

func date(path, layout string, loc *time.Location) func(document.Doc) any {
	return func(d document.Doc) any { return DateAt(d, path, layout, loc) }
}

// contactColumns are the customer columns shared by reports joined to a contact.
func contactColumns(prefix string) []Column {
	return []Column{
		{Key: "contactId", Label: "Contact ID", Value: text(field(prefix, "contact_id"))},
		{Key: "customerName", Label: "Customer Name", Value: contactName(prefix)},
		{Key: "customerCode", Label: "Customer Code", Value: customField(field(prefix, "custom_fields"), "customer_code", "value_label")},
		{Key: "phone", Label: "Phone", Value: text(field(prefix, "phone"))},
		{Key: "island", Label: "Island", Value: text(field(prefix, "address.city"))},
		{Key: "atoll", Label: "Atoll", Value: text(field(prefix, "address.province"))},
		{Key: "serviceProvider", Label: "Service Provider", Value: customField(field(prefix, "custom_fields"), "service_provider", "value_label")},
	}
}

func columns(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func ascending(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

func descending(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: -1})
	}
	return d
}

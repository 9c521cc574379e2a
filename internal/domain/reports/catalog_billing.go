package reports

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// Posted-event types of the events collection.
const (
	EventPaymentPosted = "PAYMENT_POSTED"
	EventInvoicePosted = "INVOICE_POSTED"
	EventTopUpPosted   = "TOP_UP_POSTED"
)

const manualJournal = "MANUAL_JOURNAL"

func paymentMethod(path string) func(document.Doc) any {
	return func(d document.Doc) any {
		return Alias(PaymentMethodAliases, d.String(path))
	}
}

func (c *Catalog) registerBillingReports() {
	c.add(&Definition{
		Name:  "orders",
		Title: "Orders",
		Columns: columns(
			[]Column{
				{Key: "orderNumber", Label: "Order Number", Value: text("number")},
				{Key: "submittedDate", Label: "Submitted Date", Value: date("submitted_date", LayoutDash, Maldives)},
				{Key: "state", Label: "State", Value: text("state")},
				{Key: "paymentMethod", Label: "Payment Method", Value: paymentMethod("payment_method.type")},
				{Key: "currency", Label: "Currency", Value: textOrNA("currency")},
				{Key: "totalAmount", Label: "Total Amount", Value: money("total_amount")},
			},
			contactColumns(contactAlias),
		),
		Source: c.pipeline(false, func(p Params) (Plan, error) {
			return Plan{
				Collection: CollOrders,
				Match:      Merge(SearchMatch(p.Search), p.Dates.Match("submitted_date")),
				Joins:      []Join{contactJoin("contact_id")},
				JoinMatch:  ContactFilters(contactAlias, p),
				Sort:       descending("submitted_date"),
			}, nil
		}),
	})

	c.add(&Definition{
		Name:    "journals",
		Title:   "Contact Journals",
		Columns: journalColumns(),
		Source:  c.pipeline(true, journalQuery{}.plan),
	})
	c.add(&Definition{
		Name:  "manual-journals",
		Title: "Manual Journals",
		Columns: append(journalColumns(), Column{
			Key: "notes", Label: "Notes", Value: text("notes"),
		}),
		Source: c.pipeline(false, journalQuery{transactionType: manualJournal}.plan),
	})

	c.add(&Definition{
		Name:  "payments",
		Title: "Payments",
		Columns: columns(
			[]Column{
				{Key: "postedDate", Label: "Posted Date", Value: date("transaction.posted_date", LayoutDash, Maldives)},
				{Key: "number", Label: "Payment Number", Value: text("transaction.number")},
				{Key: "referenceNumber", Label: "Reference Number", Value: textOrNA("transaction.reference_number")},
				{Key: "paymentMethod", Label: "Payment Method", Value: paymentMethod("payment_method.type")},
				{Key: "currency", Label: "Currency", Value: textOrNA("transaction.currency")},
				{Key: "amount", Label: "Amount", Value: money("transaction.total_amount")},
			},
			contactColumns(contactAlias),
		),
		Source: c.pipeline(true, eventQuery{eventType: EventPaymentPosted}.plan),
	})

	c.add(&Definition{
		Name:  "invoices",
		Title: "Invoices",
		Columns: columns(
			[]Column{
				{Key: "number", Label: "Invoice Number", Value: text("transaction.number")},
				{Key: "issuedDate", Label: "Issued Date", Value: date("transaction.issued_date", LayoutDash, Maldives)},
				{Key: "dueDate", Label: "Due Date", Value: date("transaction.due_date", LayoutDash, Maldives)},
				{Key: "postedDate", Label: "Posted Date", Value: date("transaction.posted_date", LayoutDash, Maldives)},
				{Key: "currency", Label: "Currency", Value: textOrNA("transaction.currency")},
				{Key: "netAmount", Label: "Net Amount", Value: money("transaction.net_amount")},
				{Key: "taxAmount", Label: "Tax Amount", Value: money("transaction.tax_amount")},
				{Key: "totalAmount", Label: "Total Amount", Value: money("transaction.total_amount")},
				{Key: "unsettledAmount", Label: "Unsettled Amount", Value: func(d document.Doc) any {
					return MoneyTextAt(d, "transaction.unsettled_amount")
				}},
			},
			contactColumns(contactAlias),
		),
		Source: c.pipeline(true, eventQuery{eventType: EventInvoicePosted}.plan),
	})

	c.add(&Definition{
		Name:  "top-ups",
		Title: "Wallet Top-ups",
		Columns: columns(
			[]Column{
				{Key: "postedDate", Label: "Posted Date", Value: date("transaction.posted_date", LayoutDash, Maldives)},
				{Key: "number", Label: "Top-up Number", Value: text("transaction.number")},
				{Key: "paymentMethod", Label: "Payment Method", Value: paymentMethod("payment_method.type")},
				{Key: "amount", Label: "Amount", Value: money("transaction.total_amount")},
			},
			contactColumns(contactAlias),
		),
		Source: c.pipeline(false, eventQuery{eventType: EventTopUpPosted}.plan),
	})
}

// journalQuery selects contact-owned journal entries, optionally of one
// transaction type.
type journalQuery struct {
	transactionType string
}

func (q journalQuery) plan(p Params) (Plan, error) {
	match := Merge(
		SearchMatch(p.Search),
		bson.M{"contact_code": bson.M{"$exists": true, "$ne": ""}},
		p.Dates.Match("posted_date"),
	)
	if q.transactionType != "" {
		match["transaction_type"] = q.transactionType
	}
	return Plan{
		Collection: CollJournals,
		Match:      match,
		Joins: []Join{{
			From:         CollContactProfiles,
			LocalField:   "contact_code",
			ForeignField: "code",
			As:           contactAlias,
			Cardinality:  OneToOne,
		}},
		JoinMatch: ContactFilters(contactAlias, p),
		Sort:      descending("posted_date"),
	}, nil
}

func journalColumns() []Column {
	return columns(
		[]Column{
			{Key: "postedDate", Label: "Posted Date", Value: date("posted_date", LayoutDash, Maldives)},
			{Key: "contactCode", Label: "Contact Code", Value: text("contact_code")},
			{Key: "accountNumber", Label: "Account Number", Value: text("account_number")},
			{Key: "type", Label: "Type", Value: func(d document.Doc) any {
				return Alias(JournalAccountAliases, d.String("account_type"))
			}},
			{Key: "transactionType", Label: "Transaction Type", Value: text("transaction_type")},
			{Key: "reference", Label: "Reference", Value: textOrNA("related_entity.reference_number")},
			{Key: "amount", Label: "Amount", Value: money("amount")},
			{Key: "submittedBy", Label: "Submitted By", Value: textOrNA("submitted_by_user_name")},
		},
		contactColumns(contactAlias)[1:],
	)
}

// eventQuery selects posted financial events of one type.
type eventQuery struct {
	eventType string
}

func (q eventQuery) plan(p Params) (Plan, error) {
	return Plan{
		Collection: CollEvents,
		Match: Merge(
			SearchMatch(p.Search),
			bson.M{"type": q.eventType},
			p.Dates.Match("transaction.posted_date"),
		),
		Joins:     []Join{contactJoin("contact_id")},
		JoinMatch: ContactFilters(contactAlias, p),
		Sort:      descending("transaction.posted_date"),
	}, nil
}

package reports

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// dealerLocationJoins chain dealer -> island -> atoll. Each step reads a key
// produced by the previous one.
func dealerLocationJoins(dealerField string) []Join {
	joins := []Join{}
	islandKey := "island_id"
	if dealerField != "" {
		joins = append(joins, Join{
			From:         CollDealers,
			LocalField:   dealerField,
			ForeignField: "dealer_id",
			As:           "dealer",
			Cardinality:  OneToOne,
			Unwind:       true,
		})
		islandKey = "dealer.island_id"
	}
	return append(joins,
		Join{
			From:         CollIslands,
			LocalField:   islandKey,
			ForeignField: "island_id",
			As:           "island",
			Cardinality:  OneToOne,
			Unwind:       true,
		},
		Join{
			From:         CollAtolls,
			LocalField:   "island.atoll_id",
			ForeignField: "atoll_id",
			As:           "atoll",
			Cardinality:  OneToOne,
			Unwind:       true,
		},
	)
}

func (c *Catalog) registerDealerReports() {
	c.add(&Definition{
		Name:  "dealer-collections",
		Title: "Dealer Collections",
		Columns: []Column{
			{Key: "postedDate", Label: "Posted Date", Value: date("posted_date", LayoutDash, Maldives)},
			{Key: "dealerCode", Label: "Dealer Code", Value: text("dealer.code")},
			{Key: "dealerName", Label: "Dealer Name", Value: textOrNA("dealer.name")},
			{Key: "island", Label: "Island", Value: text("island.name")},
			{Key: "atoll", Label: "Atoll", Value: text("atoll.name")},
			{Key: "type", Label: "Type", Value: func(d document.Doc) any {
				return Alias(DealerAccountAliases, d.String("account_type"))
			}},
			{Key: "transactionType", Label: "Transaction Type", Value: text("transaction_type")},
			{Key: "reference", Label: "Reference", Value: textOrNA("related_entity.reference_number")},
			{Key: "amount", Label: "Amount", Value: money("amount")},
			{Key: "submittedBy", Label: "Submitted By", Value: textOrNA("submitted_by_user_name")},
		},
		Source: c.pipeline(false, func(p Params) (Plan, error) {
			return Plan{
				Collection: CollJournals,
				Match: Merge(
					SearchMatch(p.Search),
					bson.M{"organisation_id": bson.M{"$exists": true, "$ne": ""}},
					p.Dates.Match("posted_date"),
				),
				Joins:     dealerLocationJoins("organisation_id"),
				JoinMatch: LocationMatch("atoll.name", "island.name", p.Atoll, p.Island),
				Sort:      descending("posted_date"),
			}, nil
		}),
	})

	c.add(&Definition{
		Name:      "dealers",
		Title:     "Dealers",
		LegacyCSV: true,
		Columns: []Column{
			{Key: "dealerId", Label: "Dealer ID", Value: text("dealer_id")},
			{Key: "dealerCode", Label: "Dealer Code", Value: text("code")},
			{Key: "dealerName", Label: "Dealer Name", Value: text("name")},
			{Key: "phone", Label: "Phone", Value: textOrNA("phone")},
			{Key: "island", Label: "Island", Value: text("island.name")},
			{Key: "atoll", Label: "Atoll", Value: text("atoll.name")},
			{Key: "status", Label: "Status", Value: text("status")},
		},
		Source: c.pipeline(false, func(p Params) (Plan, error) {
			return Plan{
				Collection: CollDealers,
				Match:      SearchMatch(p.Search),
				Joins:      dealerLocationJoins(""),
				JoinMatch:  LocationMatch("atoll.name", "island.name", p.Atoll, p.Island),
				Sort:       ascending("name"),
			}, nil
		}),
	})
}

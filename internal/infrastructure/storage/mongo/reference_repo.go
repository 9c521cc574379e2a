package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

type atollDoc struct {
	AtollID string `bson:"atoll_id"`
	Name    string `bson:"name"`
}

type islandDoc struct {
	IslandID string     `bson:"island_id"`
	Name     string     `bson:"name"`
	AtollID  string     `bson:"atoll_id"`
	Atoll    []atollDoc `bson:"atoll"`
}

type dealerDoc struct {
	DealerID string     `bson:"dealer_id"`
	Code     string     `bson:"code"`
	Name     string     `bson:"name"`
	Phone    string     `bson:"phone"`
	Status   string     `bson:"status"`
	Island   *islandDoc `bson:"island"`
}

// ReferenceRepo implements reference.Repository on the CRM database.
type ReferenceRepo struct {
	db *mongo.Database
}

// NewReferenceRepo creates a reference repository.
func NewReferenceRepo(db *mongo.Database) *ReferenceRepo {
	return &ReferenceRepo{db: db}
}

func (r *ReferenceRepo) ListAtolls(ctx context.Context) ([]reference.Atoll, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.db.Collection(reports.CollAtolls).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find atolls: %w", err)
	}
	var docs []atollDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode atolls: %w", err)
	}

	out := make([]reference.Atoll, len(docs))
	for i, d := range docs {
		out[i] = reference.Atoll{ID: d.AtollID, Name: d.Name}
	}
	return out, nil
}

func islandsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reports.CollAtolls},
			{Key: "localField", Value: "atoll_id"},
			{Key: "foreignField", Value: "atoll_id"},
			{Key: "as", Value: "atoll"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}
}

func (r *ReferenceRepo) ListIslands(ctx context.Context) ([]reference.Island, error) {
	cursor, err := r.db.Collection(reports.CollIslands).Aggregate(ctx, islandsPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate islands: %w", err)
	}
	var docs []islandDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode islands: %w", err)
	}

	out := make([]reference.Island, len(docs))
	for i, d := range docs {
		out[i] = d.toIsland()
	}
	return out, nil
}

func (d islandDoc) toIsland() reference.Island {
	is := reference.Island{ID: d.IslandID, Name: d.Name, AtollID: d.AtollID}
	if len(d.Atoll) > 0 {
		is.AtollName = d.Atoll[0].Name
	}
	return is
}

// dealersPipeline joins dealer -> island -> atoll with the same join planner
// the reports use.
func dealersPipeline() (mongo.Pipeline, error) {
	joins, err := reports.OrderJoins([]reports.Join{
		{
			From:         reports.CollIslands,
			LocalField:   "island_id",
			ForeignField: "island_id",
			As:           "island",
			Cardinality:  reports.OneToOne,
			Unwind:       true,
		},
		{
			From:         reports.CollAtolls,
			LocalField:   "island.atoll_id",
			ForeignField: "atoll_id",
			As:           "island.atoll",
			Cardinality:  reports.OneToOne,
		},
	})
	if err != nil {
		return nil, err
	}
	var pipeline mongo.Pipeline
	for _, j := range joins {
		pipeline = append(pipeline, j.Stages()...)
	}
	return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}}), nil
}

func (r *ReferenceRepo) ListDealers(ctx context.Context) ([]reference.Dealer, error) {
	pipeline, err := dealersPipeline()
	if err != nil {
		return nil, err
	}
	cursor, err := r.db.Collection(reports.CollDealers).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate dealers: %w", err)
	}
	var docs []dealerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dealers: %w", err)
	}

	out := make([]reference.Dealer, len(docs))
	for i, d := range docs {
		dealer := reference.Dealer{ID: d.DealerID, Code: d.Code, Name: d.Name, Phone: d.Phone, Status: d.Status}
		if d.Island != nil {
			is := d.Island.toIsland()
			dealer.IslandName, dealer.AtollName = is.Name, is.AtollName
		}
		out[i] = dealer
	}
	return out, nil
}

var _ reference.Repository = (*ReferenceRepo)(nil)

package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExpandIndexField holds the array position of an expanded element. It keeps
// page order stable when several rows share the same _id.
const ExpandIndexField = "_expand_index"

// Plan is the declarative aggregation for one report request. The count and
// data pipelines share the same filter/join/expansion prefix so the reported
// total always agrees with the page contents.
type Plan struct {
	Collection string

	// Match filters the primary collection. A $text predicate must live
	// here because it has to be in the first stage.
	Match bson.M

	// Expand names an embedded array to unwind into one row per element.
	// ExpandExists filters before expansion (the parent has at least one
	// matching element); ExpandMatch filters each element after expansion.
	// Both are needed: without ExpandMatch every sibling of a matching
	// element would be emitted too.
	Expand       string
	ExpandExists bson.M
	ExpandMatch  bson.M

	Joins     []Join
	JoinMatch bson.M

	// Stages run after all filters (computed fields, grouping).
	Stages []bson.D

	Sort bson.D

	MaxTime      time.Duration
	AllowDiskUse bool
}

// prefix renders the stages shared by count and data pipelines.
func (p Plan) prefix() (mongo.Pipeline, error) {
	var pipeline mongo.Pipeline

	if len(p.Match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: p.Match}})
	}
	if p.Expand != "" && len(p.ExpandExists) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: p.ExpandExists}})
	}

	joins, err := OrderJoins(p.Joins)
	if err != nil {
		return nil, err
	}
	for _, j := range joins {
		pipeline = append(pipeline, j.Stages()...)
	}
	if len(p.JoinMatch) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: p.JoinMatch}})
	}

	if p.Expand != "" {
		pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + p.Expand},
			{Key: "includeArrayIndex", Value: ExpandIndexField},
		}}})
		if len(p.ExpandMatch) > 0 {
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: p.ExpandMatch}})
		}
	}

	pipeline = append(pipeline, p.Stages...)
	return pipeline, nil
}

// Pipeline renders the data pipeline. A nil window returns every row.
func (p Plan) Pipeline(window *Window) (mongo.Pipeline, error) {
	pipeline, err := p.prefix()
	if err != nil {
		return nil, err
	}

	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: p.stableSort()}})
	if window != nil {
		if window.Skip > 0 {
			pipeline = append(pipeline, bson.D{{Key: "$skip", Value: window.Skip}})
		}
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: window.Limit}})
	}
	return pipeline, nil
}

// CountPipeline renders the total-count pipeline.
func (p Plan) CountPipeline() (mongo.Pipeline, error) {
	pipeline, err := p.prefix()
	if err != nil {
		return nil, err
	}
	return append(pipeline, bson.D{{Key: "$count", Value: "total"}}), nil
}

// stableSort appends _id (and the expansion index) as tie-breakers so
// consecutive pages never overlap or skip rows.
func (p Plan) stableSort() bson.D {
	sort := make(bson.D, 0, len(p.Sort)+2)
	hasID := false
	for _, e := range p.Sort {
		if e.Key == "_id" {
			hasID = true
		}
		sort = append(sort, e)
	}
	if !hasID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	if p.Expand != "" {
		sort = append(sort, bson.E{Key: ExpandIndexField, Value: 1})
	}
	return sort
}

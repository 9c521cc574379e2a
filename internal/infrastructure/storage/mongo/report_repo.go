package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

var tracer = otel.Tracer("billing-reports/mongo")

// aggregator is satisfied by *mongo.Collection.
type aggregator interface {
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// ReportRepo implements reports.Repository on the CRM database.
type ReportRepo struct {
	collection func(name string) aggregator
}

// NewReportRepo creates a report repository over db.
func NewReportRepo(db *mongo.Database) *ReportRepo {
	return &ReportRepo{collection: func(name string) aggregator { return db.Collection(name) }}
}

// aggregateOptions carries the plan's execution limits to the server.
func aggregateOptions(plan reports.Plan) *options.AggregateOptions {
	opts := options.Aggregate()
	if plan.MaxTime > 0 {
		opts.SetMaxTime(plan.MaxTime)
	}
	if plan.AllowDiskUse {
		opts.SetAllowDiskUse(true)
	}
	return opts
}

func startSpan(ctx context.Context, name string, plan reports.Plan, stages int) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.collection", plan.Collection),
			attribute.Int("db.pipeline.stages", stages),
			attribute.Bool("db.allow_disk_use", plan.AllowDiskUse),
		),
	)
}

// storeError marks server and network timeouts so callers can tell them
// apart from other failures.
func storeError(op, collection string, err error) error {
	if mongo.IsTimeout(err) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w: %w", op, collection, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s %s: %w", op, collection, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Count runs the count pipeline. An empty result is a zero count.
func (r *ReportRepo) Count(ctx context.Context, plan reports.Plan) (total int64, err error) {
	pipeline, err := plan.CountPipeline()
	if err != nil {
		return 0, fmt.Errorf("build count pipeline: %w", err)
	}

	ctx, span := startSpan(ctx, "reports.count", plan, len(pipeline))
	defer func() { endSpan(span, err) }()

	cursor, err := r.collection(plan.Collection).Aggregate(ctx, pipeline, aggregateOptions(plan))
	if err != nil {
		return 0, storeError("count", plan.Collection, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return 0, storeError("count", plan.Collection, err)
		}
		return 0, nil
	}

	var res bson.M
	if err := cursor.Decode(&res); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	n, ok := document.ToInt64(res["total"])
	if !ok {
		return 0, fmt.Errorf("decode count: unexpected total %T", res["total"])
	}
	span.SetAttributes(attribute.Int64("reports.total", n))
	return n, nil
}

// Each streams the data pipeline through fn.
func (r *ReportRepo) Each(ctx context.Context, plan reports.Plan, window *reports.Window, fn func(document.Doc) error) (err error) {
	pipeline, err := plan.Pipeline(window)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, span := startSpan(ctx, "reports.aggregate", plan, len(pipeline))
	rows := 0
	defer func() {
		span.SetAttributes(attribute.Int("reports.rows", rows))
		endSpan(span, err)
	}()

	opts := aggregateOptions(plan)
	if window != nil {
		opts.SetBatchSize(int32(min(window.Limit, 1000)))
	}

	cursor, err := r.collection(plan.Collection).Aggregate(ctx, pipeline, opts)
	if err != nil {
		return storeError("aggregate", plan.Collection, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var m bson.M
		if err := cursor.Decode(&m); err != nil {
			return fmt.Errorf("decode %s row %d: %w", plan.Collection, rows+1, err)
		}
		if err := fn(document.FromBSON(m)); err != nil {
			return err
		}
		rows++
	}
	if err := cursor.Err(); err != nil {
		return storeError("aggregate", plan.Collection, err)
	}
	return nil
}

var _ reports.Repository = (*ReportRepo)(nil)

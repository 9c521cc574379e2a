package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// planRecorder captures the plans the catalog hands to the store.
type planRecorder struct {
	mu    sync.Mutex
	plans []Plan
	docs  []document.Doc
}

func (r *planRecorder) record(plan Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, plan)
}

func (r *planRecorder) Count(ctx context.Context, plan Plan) (int64, error) {
	r.record(plan)
	return int64(len(r.docs)), nil
}

func (r *planRecorder) Each(ctx context.Context, plan Plan, window *Window, fn func(document.Doc) error) error {
	r.record(plan)
	for _, d := range r.docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

type mtvRecorder struct {
	queries []MTVQuery
}

func (m *mtvRecorder) CountMTV(ctx context.Context, q MTVQuery) (int64, error) {
	m.queries = append(m.queries, q)
	return 0, nil
}

func (m *mtvRecorder) EachMTV(ctx context.Context, q MTVQuery, window *Window, fn func(document.Doc) error) error {
	m.queries = append(m.queries, q)
	return nil
}

var catalogNames = []string{
	"active-subscriptions",
	"contact-packages",
	"customer-accounts",
	"customers",
	"dealer-collections",
	"dealers",
	"devices",
	"expiring-services",
	"inactive-subscriptions",
	"invoices",
	"journals",
	"manual-journals",
	"mtv-referrals",
	"mtv-users",
	"orders",
	"payments",
	"service-request-aging",
	"service-requests",
	"subscriptions",
	"top-ups",
}

func TestCatalog_Names(t *testing.T) {
	c := NewCatalog(&planRecorder{}, &mtvRecorder{}, CatalogConfig{})

	var names []string
	for _, d := range c.All() {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Title, d.Name)
		assert.NotEmpty(t, d.Columns, d.Name)
		assert.NotNil(t, d.Source, d.Name)

		keys := map[string]bool{}
		for _, col := range d.Columns {
			assert.False(t, keys[col.Key], "%s: duplicate column %s", d.Name, col.Key)
			keys[col.Key] = true
		}
	}
	assert.Equal(t, catalogNames, names)
}

func TestCatalog_WithoutMTVStore(t *testing.T) {
	c := NewCatalog(&planRecorder{}, nil, CatalogConfig{})
	_, ok := c.Get("mtv-users")
	assert.False(t, ok)
	assert.Len(t, c.All(), len(catalogNames)-2)
}

// Every CRM report renders both pipelines with all filters set.
func TestCatalog_PipelinesRender(t *testing.T) {
	repo := &planRecorder{}
	c := NewCatalog(repo, &mtvRecorder{}, CatalogConfig{})
	p := mustParams(t, RawParams{
		Search:          "ali",
		StartDate:       "2024-01-01",
		EndDate:         "2024-01-31",
		Atoll:           "Kaafu",
		Island:          "Male",
		ServiceProvider: "Medianet",
	})

	for _, d := range c.All() {
		t.Run(d.Name, func(t *testing.T) {
			repo.plans = nil
			_, err := d.Source.Count(context.Background(), p)
			require.NoError(t, err)
			if _, isMTV := d.Source.(mtvSource); isMTV {
				return
			}
			require.Len(t, repo.plans, 1)

			plan := repo.plans[0]
			_, err = plan.Pipeline(p.Window())
			require.NoError(t, err)
			count, err := plan.CountPipeline()
			require.NoError(t, err)

			first, ok := count[0][0].Value.(bson.M)
			require.True(t, ok)
			assert.Contains(t, first, "$text", "search must be in the first stage")
			assert.Positive(t, plan.MaxTime)
		})
	}
}

func TestCatalog_ExecutionLimits(t *testing.T) {
	repo := &planRecorder{}
	c := NewCatalog(repo, nil, CatalogConfig{DefaultTimeout: time.Second, HeavyTimeout: time.Minute})

	tests := []struct {
		report  string
		maxTime time.Duration
		disk    bool
	}{
		{report: "orders", maxTime: time.Second, disk: false},
		{report: "invoices", maxTime: time.Minute, disk: true},
		{report: "subscriptions", maxTime: time.Minute, disk: true},
	}
	for _, tt := range tests {
		repo.plans = nil
		d, ok := c.Get(tt.report)
		require.True(t, ok)
		_, err := d.Source.Count(context.Background(), Params{})
		require.NoError(t, err)
		assert.Equal(t, tt.maxTime, repo.plans[0].MaxTime, tt.report)
		assert.Equal(t, tt.disk, repo.plans[0].AllowDiskUse, tt.report)
	}
}

func TestCatalog_DealerCollectionsFilterOnDealerLocation(t *testing.T) {
	repo := &planRecorder{}
	c := NewCatalog(repo, nil, CatalogConfig{})
	d, _ := c.Get("dealer-collections")

	p := mustParams(t, RawParams{Atoll: "Kaafu", Island: "Male"})
	_, err := d.Source.Count(context.Background(), p)
	require.NoError(t, err)

	plan := repo.plans[0]
	assert.Equal(t, bson.M{"atoll.name": "Kaafu", "island.name": "Male"}, plan.JoinMatch)

	ordered, err := OrderJoins(plan.Joins)
	require.NoError(t, err)
	assert.Equal(t, []string{"dealer", "island", "atoll"}, aliases(ordered))
}

func TestCatalog_MTVQueries(t *testing.T) {
	mtv := &mtvRecorder{}
	c := NewCatalog(&planRecorder{}, mtv, CatalogConfig{})
	d, _ := c.Get("mtv-referrals")

	p := mustParams(t, RawParams{Search: "960", StartDate: "2024-01-01"})
	err := d.Source.Each(context.Background(), p, nil, func(document.Doc) error { return nil })
	require.NoError(t, err)

	require.Len(t, mtv.queries, 1)
	assert.Equal(t, MTVReferrals, mtv.queries[0].Dataset)
	assert.Equal(t, "960", mtv.queries[0].Search)
	assert.Equal(t, p.Dates, mtv.queries[0].Dates)
}

func TestCatalog_ServiceRequestAging(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &planRecorder{docs: []document.Doc{
		{"number": "SR-1", "created_date": now.Add(-45 * 24 * time.Hour).Unix(), "status": bson.M{"name": "Open"}},
		{"number": "SR-2"},
	}}
	c := NewCatalog(repo, nil, CatalogConfig{Now: func() time.Time { return now }})
	svc := NewService(c, nil)

	req, err := svc.Prepare("service-request-aging", RawParams{Format: "csv"})
	require.NoError(t, err)
	rows, err := svc.Rows(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	age, _ := rows[0].Get("ageDays")
	bucket, _ := rows[0].Get("ageBucket")
	assert.Equal(t, int64(45), age)
	assert.Equal(t, "31-60 days", bucket)

	bucket, _ = rows[1].Get("ageBucket")
	assert.Equal(t, NotAvailable, bucket)

	assert.Equal(t, bson.M{"$ne": true}, repo.plans[0].Match["resolved"])
}

func TestCatalog_ServiceRequestsRequireDates(t *testing.T) {
	repo := &planRecorder{}
	svc := NewService(NewCatalog(repo, nil, CatalogConfig{}), nil)

	_, err := svc.Prepare("service-requests", RawParams{})
	require.Error(t, err)
	assert.Empty(t, repo.plans)
}

func TestCatalog_ContactPackages(t *testing.T) {
	repo := &planRecorder{docs: []document.Doc{{
		"contact_id": "C-1",
		"subscriptions": primitive.A{
			bson.M{"services": primitive.A{
				bson.M{"state": "EFFECTIVE", "product": bson.M{"name": "Basic"}},
				bson.M{"state": "NOT_EFFECTIVE", "product": bson.M{"name": "Sports"}},
			}},
			bson.M{"services": bson.M{"state": "EFFECTIVE", "product": bson.M{"name": "Movies"}}},
		},
	}}}
	svc := NewService(NewCatalog(repo, nil, CatalogConfig{}), nil)

	req, err := svc.Prepare("contact-packages", RawParams{})
	require.NoError(t, err)
	page, err := svc.Page(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	packages, _ := page.Data[0].Get("packages")
	active, _ := page.Data[0].Get("activePackages")
	count, _ := page.Data[0].Get("serviceCount")
	assert.Equal(t, "Basic, Sports, Movies", packages)
	assert.Equal(t, "Basic, Movies", active)
	assert.Equal(t, int64(3), count)
}

func TestAgeBucket(t *testing.T) {
	assert.Equal(t, "0-7 days", AgeBucket(0))
	assert.Equal(t, "0-7 days", AgeBucket(7))
	assert.Equal(t, "8-30 days", AgeBucket(8))
	assert.Equal(t, "31-60 days", AgeBucket(60))
	assert.Equal(t, "60+ days", AgeBucket(61))
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
)

// MTVUser is one row of mtv_users.
type MTVUser struct {
	ID           string    `db:"id"`
	Name         *string   `db:"name"`
	Phone        *string   `db:"phone"`
	Email        *string   `db:"email"`
	ReferralCode *string   `db:"referral_code"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
}

// MTVReferral is one row of mtv_referrals joined to both users.
type MTVReferral struct {
	ID            string              `db:"id"`
	ReferralCode  *string             `db:"referral_code"`
	Status        string              `db:"status"`
	RewardAmount  decimal.NullDecimal `db:"reward_amount"`
	CreatedAt     time.Time           `db:"created_at"`
	ReferrerName  *string             `db:"referrer_name" doc:"referrer.name"`
	ReferrerPhone *string             `db:"referrer_phone" doc:"referrer.phone"`
	RefereeName   *string             `db:"referee_name" doc:"referee.name"`
	RefereePhone  *string             `db:"referee_phone" doc:"referee.phone"`
}

// dataset maps an MTV dataset onto SQL.
type dataset struct {
	from      string
	joins     []string
	columns   []string
	search    []string
	createdAt string
	orderBy   []string
}

func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

var datasets = map[reports.MTVDataset]dataset{
	reports.MTVUsers: {
		from:      "mtv_users u",
		columns:   qualify("u", ExtractDBColumns[MTVUser]()),
		search:    []string{"u.name", "u.phone", "u.email", "u.referral_code"},
		createdAt: "u.created_at",
		orderBy:   []string{"u.created_at DESC", "u.id"},
	},
	reports.MTVReferrals: {
		from: "mtv_referrals r",
		joins: []string{
			"mtv_users ru ON ru.id = r.referrer_id",
			"mtv_users ee ON ee.id = r.referee_id",
		},
		columns: []string{
			"r.id", "r.referral_code", "r.status", "r.reward_amount", "r.created_at",
			"ru.name AS referrer_name", "ru.phone AS referrer_phone",
			"ee.name AS referee_name", "ee.phone AS referee_phone",
		},
		search:    []string{"r.referral_code", "ru.name", "ru.phone", "ee.name", "ee.phone"},
		createdAt: "r.created_at",
		orderBy:   []string{"r.created_at DESC", "r.id"},
	},
}

// MTVRepo implements reports.MTVRepository.
type MTVRepo struct {
	tx      *TxManager
	builder squirrel.StatementBuilderType
}

// NewMTVRepo creates an MTV repository.
func NewMTVRepo(tx *TxManager) *MTVRepo {
	return &MTVRepo{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func lookupDataset(name reports.MTVDataset) (dataset, error) {
	ds, ok := datasets[name]
	if !ok {
		return dataset{}, fmt.Errorf("unknown mtv dataset %q", name)
	}
	return ds, nil
}

// likeEscaper quotes LIKE wildcards so search text matches literally.
// Backslash is the default ILIKE escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyFilters adds search and date predicates. Both queries of a request go
// through here so count and rows agree.
func applyFilters(b squirrel.SelectBuilder, ds dataset, q reports.MTVQuery) squirrel.SelectBuilder {
	for _, j := range ds.joins {
		b = b.LeftJoin(j)
	}
	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(q.Search) + "%"
		or := make(squirrel.Or, len(ds.search))
		for i, col := range ds.search {
			or[i] = squirrel.ILike{col: pattern}
		}
		b = b.Where(or)
	}
	if q.Dates.From != nil {
		b = b.Where(squirrel.GtOrEq{ds.createdAt: *q.Dates.From})
	}
	if q.Dates.To != nil {
		b = b.Where(squirrel.LtOrEq{ds.createdAt: *q.Dates.To})
	}
	return b
}

func (r *MTVRepo) countQuery(q reports.MTVQuery) (string, []any, error) {
	ds, err := lookupDataset(q.Dataset)
	if err != nil {
		return "", nil, err
	}
	return applyFilters(r.builder.Select("COUNT(*)").From(ds.from), ds, q).ToSql()
}

func (r *MTVRepo) selectQuery(q reports.MTVQuery, window *reports.Window) (string, []any, error) {
	ds, err := lookupDataset(q.Dataset)
	if err != nil {
		return "", nil, err
	}
	b := applyFilters(r.builder.Select(ds.columns...).From(ds.from), ds, q).OrderBy(ds.orderBy...)
	if window != nil {
		b = b.Limit(uint64(window.Limit))
		if window.Skip > 0 {
			b = b.Offset(uint64(window.Skip))
		}
	}
	return b.ToSql()
}

// CountMTV implements reports.MTVRepository.
func (r *MTVRepo) CountMTV(ctx context.Context, q reports.MTVQuery) (int64, error) {
	query, args, err := r.countQuery(q)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	err = r.tx.ReadOnly(ctx, "mtv.count", func(ctx context.Context, qr Querier) error {
		return qr.QueryRow(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, storeError("count", q.Dataset, err)
	}
	return n, nil
}

// EachMTV implements reports.MTVRepository.
func (r *MTVRepo) EachMTV(ctx context.Context, q reports.MTVQuery, window *reports.Window, fn func(document.Doc) error) error {
	query, args, err := r.selectQuery(q, window)
	if err != nil {
		return fmt.Errorf("build select query: %w", err)
	}

	err = r.tx.ReadOnly(ctx, "mtv.select", func(ctx context.Context, qr Querier) error {
		switch q.Dataset {
		case reports.MTVUsers:
			return eachRow[MTVUser](ctx, qr, query, args, fn)
		default:
			return eachRow[MTVReferral](ctx, qr, query, args, fn)
		}
	})
	if err != nil {
		return storeError("select", q.Dataset, err)
	}
	return nil
}

func eachRow[T any](ctx context.Context, qr Querier, query string, args []any, fn func(document.Doc) error) error {
	rows, err := qr.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	rs := pgxscan.NewRowScanner(rows)
	for rows.Next() {
		var row T
		if err := rs.Scan(&row); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(StructToDoc(&row)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// pgQueryCanceled is raised when statement_timeout fires.
const pgQueryCanceled = "57014"

func storeError(op string, ds reports.MTVDataset, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgQueryCanceled && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s mtv %s: %w: %w", op, ds, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s mtv %s: %w", op, ds, err)
}

var _ reports.MTVRepository = (*MTVRepo)(nil)

package reports

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar-date range. From is 00:00:00.000 UTC
// of the start date, To is 23:59:59.999 UTC of the end date. A nil bound is
// unbounded on that side.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses startDate/endDate. Accepts YYYY-MM-DD or RFC3339
// (only the calendar date part is used).
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange

	if d, ok, err := parseCalendarDate("startDate", start); err != nil {
		return r, err
	} else if ok {
		from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		r.From = &from
	}

	if d, ok, err := parseCalendarDate("endDate", end); err != nil {
		return r, err
	} else if ok {
		to := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
		r.To = &to
	}

	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return DateRange{}, apperror.NewInvalidField("startDate", "must not be after endDate")
	}
	return r, nil
}

func parseCalendarDate(field, raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, apperror.NewInvalidField(field, "expected date in YYYY-MM-DD format")
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// StartEpoch returns the lower bound in epoch seconds.
func (r DateRange) StartEpoch() float64 {
	return float64(r.From.Unix())
}

// EndEpoch returns the upper bound in epoch seconds, including the final
// 999ms of the day.
func (r DateRange) EndEpoch() float64 {
	return float64(r.To.UnixMilli()) / 1000
}

// Bounds renders the range as a comparison document ({$gte, $lte}).
func (r DateRange) Bounds() bson.M {
	cond := bson.M{}
	if r.From != nil {
		cond["$gte"] = r.StartEpoch()
	}
	if r.To != nil {
		cond["$lte"] = r.EndEpoch()
	}
	return cond
}

// Match renders a predicate on an epoch-second field. Empty when unbounded.
func (r DateRange) Match(field string) bson.M {
	if r.IsZero() {
		return bson.M{}
	}
	return bson.M{field: r.Bounds()}
}

// ElemMatch renders the pre-expansion existence check: the array holds at
// least one element whose subField lies in range.
func (r DateRange) ElemMatch(arrayField, subField string) bson.M {
	if r.IsZero() {
		return bson.M{}
	}
	return bson.M{arrayField: bson.M{"$elemMatch": bson.M{subField: r.Bounds()}}}
}

// SearchMatch renders the full-text predicate for the primary collection.
func SearchMatch(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	return bson.M{"$text": bson.M{"$search": search}}
}

// GeoMatch filters on a contact's location. Atoll maps to the province field
// and island to the city field. An empty alias targets the primary document.
func GeoMatch(contactAlias, atoll, island string) bson.M {
	return LocationMatch(field(contactAlias, "address.province"), field(contactAlias, "address.city"), atoll, island)
}

// LocationMatch filters exact atoll/island names on arbitrary fields.
func LocationMatch(atollField, islandField, atoll, island string) bson.M {
	m := bson.M{}
	if atoll != "" {
		m[atollField] = atoll
	}
	if island != "" {
		m[islandField] = island
	}
	return m
}

// ServiceProviderMatch filters on the joined contact's service_provider custom field.
func ServiceProviderMatch(contactAlias, provider string) bson.M {
	if provider == "" {
		return bson.M{}
	}
	return bson.M{field(contactAlias, "custom_fields"): bson.M{"$elemMatch": bson.M{
		"key":         "service_provider",
		"value_label": provider,
	}}}
}

// ContactFilters combines the filters that apply to a joined contact profile.
func ContactFilters(contactAlias string, p Params) bson.M {
	return Merge(
		GeoMatch(contactAlias, p.Atoll, p.Island),
		ServiceProviderMatch(contactAlias, p.ServiceProvider),
	)
}

// Merge combines predicate fragments. Later fragments win on key clashes.
func Merge(parts ...bson.M) bson.M {
	out := bson.M{}
	for _, part := range parts {
		for k, v := range part {
			out[k] = v
		}
	}
	return out
}

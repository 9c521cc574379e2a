package reports

import (
	"strings"
	"time"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/types"
)

// Display date layouts.
const (
	LayoutDash  = "02-Jan-2006" // 04-Feb-2025
	LayoutSpace = "02 Jan 2006" // 04 Feb 2025
)

// NotAvailable is shown for text columns whose source is missing.
const NotAvailable = "N/A"

// Maldives is the zone applied to timestamp-only source data.
var Maldives = loadZone("Indian/Maldives", 5*60*60)

func loadZone(name string, offset int) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("MVT", offset)
}

// Display alias tables. Lookups are exact; unknown values pass through.
var (
	PaymentMethodAliases = map[string]string{
		"ELECTRONIC_TRANSFER": "QuickPay",
	}
	JournalAccountAliases = map[string]string{
		"CREDIT": "Add",
		"DEBIT":  "Deduct",
	}
	DealerAccountAliases = map[string]string{
		"CREDIT": "Dealer Credit Card",
		"DEBIT":  "INVOICE",
	}
	CountryAliases = map[string]string{
		"MDV": "Maldives",
	}
)

// Alias renames v through table, returning v when it has no entry.
func Alias(table map[string]string, v string) string {
	if a, ok := table[v]; ok {
		return a
	}
	return v
}

// CustomField extracts attr ("value" or "value_label") of the first
// custom_fields entry whose key matches. The list may be stored as an array,
// a single document, or be missing entirely; the result is "" without a match.
func CustomField(fields any, key, attr string) string {
	matches := document.Of(fields).Filter(func(v any) bool {
		d, ok := document.AsDoc(v)
		return ok && document.ToString(d["key"]) == key
	})
	first, ok := matches.First()
	if !ok {
		return ""
	}
	d, _ := document.AsDoc(first)
	return document.ToString(d[attr])
}

// DocCustomField is CustomField over the list at path inside d.
func DocCustomField(d document.Doc, path, key, attr string) string {
	return CustomField(d.Get(path).All(), key, attr)
}

// Money coerces a decimal-string amount to a 2dp number; missing is 0.
func Money(v any) types.Amount {
	m, _ := types.ParseMoney(v)
	return types.NewAmount(m)
}

// MoneyAt reads and coerces the amount at path.
func MoneyAt(d document.Doc, path string) types.Amount {
	v, _ := d.Value(path)
	return Money(v)
}

// MoneyTextAt renders the amount at path for raw-text columns: "N/A" when
// missing or unparseable.
func MoneyTextAt(d document.Doc, path string) string {
	v, _ := d.Value(path)
	m, ok := types.ParseMoney(v)
	if !ok {
		return NotAvailable
	}
	return types.NewAmount(m).String()
}

// FormatEpoch renders an epoch-second value in loc; "" when missing.
func FormatEpoch(v any, layout string, loc *time.Location) string {
	sec, ok := document.ToInt64(v)
	if !ok || sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).In(loc).Format(layout)
}

// DateAt formats the epoch-second field at path.
func DateAt(d document.Doc, path, layout string, loc *time.Location) string {
	v, _ := d.Value(path)
	return FormatEpoch(v, layout, loc)
}

// JoinValues concatenates values in order, skipping blanks.
func JoinValues(values []string, sep string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// FullName joins name parts with single spaces.
func FullName(parts ...string) string {
	return JoinValues(parts, " ")
}

// TextOr returns the string at path or fallback when it is blank.
func TextOr(d document.Doc, path, fallback string) string {
	if s := strings.TrimSpace(d.String(path)); s != "" {
		return s
	}
	return fallback
}

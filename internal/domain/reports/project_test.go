package reports

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/types"
)

func TestCustomField_ArrayAndScalarAgree(t *testing.T) {
	entry := bson.M{"key": "service_provider", "value": "MN", "value_label": "Medianet"}

	tests := []struct {
		name   string
		fields any
		want   string
	}{
		{name: "array", fields: primitive.A{bson.M{"key": "customer_code", "value_label": "C-1"}, entry}, want: "Medianet"},
		{name: "single document", fields: entry, want: "Medianet"},
		{name: "bson.D entry", fields: primitive.A{bson.D{{Key: "key", Value: "service_provider"}, {Key: "value_label", Value: "Medianet"}}}, want: "Medianet"},
		{name: "missing", fields: nil, want: ""},
		{name: "no match", fields: primitive.A{bson.M{"key": "other", "value_label": "x"}}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomField(tt.fields, "service_provider", "value_label"))
		})
	}
}

func TestCustomField_FirstMatchWins(t *testing.T) {
	fields := []any{
		map[string]any{"key": "device_code", "value": "D-1"},
		map[string]any{"key": "device_code", "value": "D-2"},
	}
	assert.Equal(t, "D-1", CustomField(fields, "device_code", "value"))
}

func TestDocCustomField_AcrossJoinedArray(t *testing.T) {
	d := document.Doc{"device": primitive.A{
		bson.M{"custom_fields": primitive.A{bson.M{"key": "device_code", "value": "STB-9"}}},
	}}
	assert.Equal(t, "STB-9", DocCustomField(d, "device.custom_fields", "device_code", "value"))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: "199.995", want: "200.00"},
		{in: "15", want: "15.00"},
		{in: 12.5, want: "12.50"},
		{in: nil, want: "0.00"},
		{in: "n/a", want: "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in).String(), "input %v", tt.in)
	}
}

func TestMoneyTextAt(t *testing.T) {
	d := document.Doc{"transaction": bson.M{"unsettled_amount": "10.125"}}
	assert.Equal(t, "10.13", MoneyTextAt(d, "transaction.unsettled_amount"))
	assert.Equal(t, NotAvailable, MoneyTextAt(d, "transaction.missing"))
}

func TestFormatEpoch(t *testing.T) {
	const ts = int64(1699920000) // 2023-11-14 00:00:00 UTC

	assert.Equal(t, "14-Nov-2023", FormatEpoch(ts, LayoutDash, time.UTC))
	assert.Equal(t, "14 Nov 2023", FormatEpoch(float64(ts), LayoutSpace, time.UTC))
	assert.Equal(t, "14-Nov-2023", FormatEpoch(ts-3600, LayoutDash, Maldives), "UTC+5 moves 23:00 to the next day")
	assert.Equal(t, "", FormatEpoch(nil, LayoutDash, time.UTC))
	assert.Equal(t, "", FormatEpoch(int64(0), LayoutDash, time.UTC))
}

func TestAliases(t *testing.T) {
	assert.Equal(t, "QuickPay", Alias(PaymentMethodAliases, "ELECTRONIC_TRANSFER"))
	assert.Equal(t, "CASH", Alias(PaymentMethodAliases, "CASH"))
	assert.Equal(t, "Add", Alias(JournalAccountAliases, "CREDIT"))
	assert.Equal(t, "INVOICE", Alias(DealerAccountAliases, "DEBIT"))
	assert.Equal(t, "Maldives", Alias(CountryAliases, "MDV"))
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "Basic, Sports", JoinValues([]string{" Basic ", "", "Sports"}, ", "))
	assert.Equal(t, "", JoinValues(nil, ", "))
	assert.Equal(t, "Aminath Ali", FullName("Aminath", "", "Ali"))
}

// A subscription expanded to one service row with a joined contact.
func TestSubscriptionRow(t *testing.T) {
	d := document.Doc{
		"_id":        primitive.NewObjectID(),
		"contact_id": "C-100",
		"services": bson.M{
			"state":         "EFFECTIVE",
			"product":       bson.M{"name": "Basic"},
			"price_terms":   bson.M{"price": "199.995"},
			"service_terms": bson.M{"start_date": int64(1700000000)},
		},
		"contact": primitive.A{bson.M{
			"contact_id":   "C-100",
			"demographics": bson.M{"first_name": "Aminath", "last_name": "Ali"},
			"address":      bson.M{"city": "Male", "province": "Kaafu"},
			"custom_fields": primitive.A{
				bson.M{"key": "service_provider", "value_label": "Medianet"},
			},
		}},
		"device": primitive.A{},
	}

	row := Project(subscriptionColumns(), d)

	pkg, _ := row.Get("package")
	status, _ := row.Get("status")
	price, _ := row.Get("price")
	start, _ := row.Get("startDate")
	end, _ := row.Get("endDate")
	name, _ := row.Get("customerName")
	provider, _ := row.Get("serviceProvider")
	deviceCode, _ := row.Get("deviceCode")

	assert.Equal(t, "Basic", pkg)
	assert.Equal(t, "EFFECTIVE", status)
	assert.Equal(t, types.Amount(200), price)
	assert.Equal(t, "14-Nov-2023", start)
	assert.Equal(t, "", end)
	assert.Equal(t, "Aminath Ali", name)
	assert.Equal(t, "Medianet", provider)
	assert.Equal(t, "", deviceCode)
}

func TestRow_MarshalJSONKeepsColumnOrder(t *testing.T) {
	row := NewRow("b", 1, "a", "x", "price", types.Amount(2.5))

	raw, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"x","price":2.50}`, string(raw))
	assert.Equal(t, []string{"b", "a", "price"}, row.Keys())
}

func TestProject_MissingFieldsAreEmpty(t *testing.T) {
	cols := []Column{
		{Key: "a", Label: "A", Value: text("nope")},
		{Key: "b", Label: "B", Value: func(document.Doc) any { return nil }},
		{Key: "c", Label: "C"},
	}
	row := Project(cols, document.Doc{})

	for _, k := range []string{"a", "b", "c"} {
		v, ok := row.Get(k)
		assert.True(t, ok)
		assert.Equal(t, "", v)
	}
}

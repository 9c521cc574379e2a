package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func aliases(joins []Join) []string {
	out := make([]string, len(joins))
	for i, j := range joins {
		out[i] = j.As
	}
	return out
}

func TestOrderJoins_ChainedDependencies(t *testing.T) {
	chain := dealerLocationJoins("organisation_id")
	reversed := []Join{chain[2], chain[1], chain[0]}

	ordered, err := OrderJoins(reversed)
	require.NoError(t, err)
	assert.Equal(t, []string{"dealer", "island", "atoll"}, aliases(ordered))
}

func TestOrderJoins_IndependentKeepDeclaredOrder(t *testing.T) {
	ordered, err := OrderJoins([]Join{deviceJoin("contact_id"), contactJoin("contact_id")})
	require.NoError(t, err)
	assert.Equal(t, []string{"device", "contact"}, aliases(ordered))
}

func TestOrderJoins_Errors(t *testing.T) {
	tests := []struct {
		name  string
		joins []Join
	}{
		{
			name:  "missing alias",
			joins: []Join{{From: CollDevices, LocalField: "contact_id", ForeignField: "owned_by"}},
		},
		{
			name:  "duplicate alias",
			joins: []Join{contactJoin("contact_id"), contactJoin("owned_by")},
		},
		{
			name: "cycle",
			joins: []Join{
				{From: "a", LocalField: "b.key", ForeignField: "key", As: "a"},
				{From: "b", LocalField: "a.key", ForeignField: "key", As: "b"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OrderJoins(tt.joins)
			assert.Error(t, err)
		})
	}
}

func TestJoin_Stages(t *testing.T) {
	j := Join{From: CollIslands, LocalField: "dealer.island_id", ForeignField: "island_id", As: "island", Unwind: true}

	stages := j.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: CollIslands},
		{Key: "localField", Value: "dealer.island_id"},
		{Key: "foreignField", Value: "island_id"},
		{Key: "as", Value: "island"},
	}}}, stages[0])
	assert.Equal(t, bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$island"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}, stages[1])

	assert.Len(t, contactJoin("contact_id").Stages(), 1, "one-to-one joins stay arrays")
}

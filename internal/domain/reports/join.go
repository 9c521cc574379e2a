package reports

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Cardinality of a join between the primary row and an auxiliary collection.
type Cardinality int

const (
	// OneToOne joins are left as a (usually single-element) array; the
	// projector reads the first element.
	OneToOne Cardinality = iota
	// OneToMany joins may match several documents. They are either unwound
	// into one row per match or flattened by the projector.
	OneToMany
)

// Join correlates an auxiliary collection to the current row by key equality.
// Joins are always left-outer: no match yields an empty array, never drops
// the primary row.
type Join struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Cardinality  Cardinality
	// Unwind expands the joined array into one row per match while keeping
	// rows without a match.
	Unwind bool
}

// Stages renders the join as $lookup (+ $unwind).
func (j Join) Stages() []bson.D {
	stages := []bson.D{{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: j.From},
		{Key: "localField", Value: j.LocalField},
		{Key: "foreignField", Value: j.ForeignField},
		{Key: "as", Value: j.As},
	}}}}
	if j.Unwind {
		stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + j.As},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	return stages
}

// dependsOn reports whether j reads a field produced by other.
func (j Join) dependsOn(other Join) bool {
	return j.LocalField == other.As || strings.HasPrefix(j.LocalField, other.As+".")
}

// OrderJoins returns the joins in an order where every join runs after the
// joins its local key depends on. Independent joins keep their declared order.
func OrderJoins(joins []Join) ([]Join, error) {
	seen := make(map[string]bool, len(joins))
	for _, j := range joins {
		if j.As == "" || j.From == "" {
			return nil, fmt.Errorf("join %q: from and as are required", j.From)
		}
		if seen[j.As] {
			return nil, fmt.Errorf("join alias %q declared twice", j.As)
		}
		seen[j.As] = true
	}

	ordered := make([]Join, 0, len(joins))
	placed := make([]bool, len(joins))
	for len(ordered) < len(joins) {
		progressed := false
		for i, j := range joins {
			if placed[i] {
				continue
			}
			ready := true
			for k, dep := range joins {
				if k != i && !placed[k] && j.dependsOn(dep) {
					ready = false
					break
				}
			}
			if ready {
				ordered = append(ordered, j)
				placed[i] = true
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("join dependency cycle among %d joins", len(joins)-len(ordered))
		}
	}
	return ordered, nil
}

package mobility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascending-macs/mobility-cli/internal/aggregate"
	"github.com/ascending-macs/mobility-cli/internal/model"
)

func TestJoinInnerIntersection(t *testing.T) {
	// Aggregates {A, B, C} × mobility {B, C, D} → joined {B, C},
	// one code dropped from each side.
	agg := &aggregate.Result{
		Level: model.LevelCounty,
		Rows: map[string]*aggregate.Row{
			"A": {Code: "A", SchoolCount: 1, Values: map[string]float64{"rating": 1}},
			"B": {Code: "B", SchoolCount: 2, Values: map[string]float64{"rating": 2}},
			"C": {Code: "C", SchoolCount: 3, Values: map[string]float64{"rating": 3}},
		},
		Columns: []string{"rating"},
	}
	table := &model.MobilityTable{
		Level:          model.LevelCounty,
		OutcomeColumns: []string{"absolute_upward_mobility"},
		Rows: map[string]map[string]float64{
			"B": {"absolute_upward_mobility": 41.1},
			"C": {"absolute_upward_mobility": 44.7},
			"D": {"absolute_upward_mobility": 39.0},
		},
	}

	joined, report := Join(agg, table)

	require.Len(t, joined, 2)
	assert.Equal(t, "B", joined[0].Code)
	assert.Equal(t, "C", joined[1].Code)
	assert.Equal(t, 1, report.DroppedAggregates)
	assert.Equal(t, 1, report.DroppedMobility)

	assert.Equal(t, 2, joined[0].SchoolCount)
	assert.InDelta(t, 2.0, joined[0].Attributes["rating"], 1e-9)
	assert.InDelta(t, 41.1, joined[0].Outcomes["absolute_upward_mobility"], 1e-9, "mobility values pass through untransformed")
}

func TestJoinEmptyIntersection(t *testing.T) {
	agg := &aggregate.Result{
		Level: model.LevelCZ,
		Rows:  map[string]*aggregate.Row{"A": {Code: "A", SchoolCount: 1}},
	}
	table := &model.MobilityTable{
		Level: model.LevelCZ,
		Rows:  map[string]map[string]float64{"Z": {"m": 1}},
	}

	joined, report := Join(agg, table)

	assert.Empty(t, joined)
	assert.Equal(t, 1, report.DroppedAggregates)
	assert.Equal(t, 1, report.DroppedMobility)
}

func TestJoinRowCountEqualsIntersectionSize(t *testing.T) {
	agg := &aggregate.Result{Level: model.LevelCounty, Rows: map[string]*aggregate.Row{}}
	table := &model.MobilityTable{Level: model.LevelCounty, Rows: map[string]map[string]float64{}}
	for _, code := range []string{"17031", "17043", "17089", "17097"} {
		agg.Rows[code] = &aggregate.Row{Code: code, SchoolCount: 1}
	}
	for _, code := range []string{"17043", "17089", "55025"} {
		table.Rows[code] = map[string]float64{"m": 1}
	}

	joined, _ := Join(agg, table)
	assert.Len(t, joined, 2)
}

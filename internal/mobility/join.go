// Package mobility joins aggregated education metrics with the
// intergenerational mobility reference tables.
package mobility

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/aggregate"
	"github.com/ascending-macs/mobility-cli/internal/model"
)

// JoinReport counts the codes dropped from each side of the inner join.
// Dropped codes are reported, not silently lost.
type JoinReport struct {
	DroppedAggregates int
	DroppedMobility   int
}

// Join inner-joins aggregate rows with mobility rows on geographic code.
// The output contains exactly the codes present in both inputs, sorted by
// code. Mobility values pass through untransformed.
func Join(agg *aggregate.Result, table *model.MobilityTable) ([]model.JoinedRecord, JoinReport) {
	var report JoinReport

	codes := make([]string, 0, len(agg.Rows))
	for code := range agg.Rows {
		if _, ok := table.Rows[code]; ok {
			codes = append(codes, code)
		} else {
			report.DroppedAggregates++
		}
	}
	sort.Strings(codes)

	for code := range table.Rows {
		if _, ok := agg.Rows[code]; !ok {
			report.DroppedMobility++
		}
	}

	joined := make([]model.JoinedRecord, 0, len(codes))
	for _, code := range codes {
		row := agg.Rows[code]
		outcomes := table.Rows[code]

		rec := model.JoinedRecord{
			Code:        code,
			SchoolCount: row.SchoolCount,
			Attributes:  make(map[string]float64, len(row.Values)),
			Outcomes:    make(map[string]float64, len(outcomes)),
		}
		for name, v := range row.Values {
			rec.Attributes[name] = v
		}
		for name, v := range outcomes {
			rec.Outcomes[name] = v
		}
		joined = append(joined, rec)
	}

	zap.L().Info("mobility: tables joined",
		zap.String("level", string(table.Level)),
		zap.Int("joined", len(joined)),
		zap.Int("dropped_aggregates", report.DroppedAggregates),
		zap.Int("dropped_mobility", report.DroppedMobility),
	)

	return joined, report
}

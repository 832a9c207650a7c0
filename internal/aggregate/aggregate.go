// Package aggregate rolls school-level attributes up to per-code summaries.
//
// Policy: numeric attributes take the arithmetic mean over the schools
// resolved to a code; proportion attributes take the enrollment-weighted
// mean, with weight 1 for schools without a positive enrollment; school
// counts are direct counts. Invalid or out-of-range cells are excluded
// from that attribute only and counted, never aborting the run.
package aggregate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
)

// Row is the aggregate record for one geographic code. A code with zero
// schools has no Row.
type Row struct {
	Code        string
	SchoolCount int
	Values      map[string]float64
}

// Result holds the aggregates for one hierarchy level.
type Result struct {
	Level model.Level
	Rows  map[string]*Row
	// Columns lists attribute names present in at least one row, sorted
	// for deterministic output.
	Columns []string
	// Excluded counts cells left out of their attribute's aggregate.
	Excluded int
}

type accumulator struct {
	count     int
	sum       map[string]float64
	weightSum map[string]float64
	n         map[string]int
}

// Schools aggregates school attributes per geographic code. codes maps
// school ID to its resolved code at the target level; schools absent from
// codes (unresolved) contribute nothing. isProportion marks share-type
// columns that aggregate as weighted means and must lie in [0,1].
// Deterministic and idempotent for fixed inputs.
func Schools(level model.Level, schools []*model.School, codes map[string]string, isProportion func(string) bool) *Result {
	res := &Result{Level: level, Rows: make(map[string]*Row)}

	accs := make(map[string]*accumulator)
	columns := make(map[string]bool)

	for _, s := range schools {
		code, ok := codes[s.ID]
		if !ok || code == "" {
			continue
		}

		acc := accs[code]
		if acc == nil {
			acc = &accumulator{
				sum:       make(map[string]float64),
				weightSum: make(map[string]float64),
				n:         make(map[string]int),
			}
			accs[code] = acc
		}
		acc.count++

		weight := 1.0
		if s.Enrollment.Valid && s.Enrollment.Value > 0 {
			weight = s.Enrollment.Value
		}

		for name, v := range s.Attributes {
			if !v.Valid {
				res.Excluded++
				continue
			}
			if isProportion != nil && isProportion(name) {
				if v.Value < 0 || v.Value > 1 {
					res.Excluded++
					continue
				}
				acc.sum[name] += v.Value * weight
				acc.weightSum[name] += weight
			} else {
				acc.sum[name] += v.Value
				acc.weightSum[name]++
			}
			acc.n[name]++
			columns[name] = true
		}
	}

	for code, acc := range accs {
		row := &Row{Code: code, SchoolCount: acc.count, Values: make(map[string]float64, len(acc.sum))}
		for name, sum := range acc.sum {
			if w := acc.weightSum[name]; w > 0 {
				row.Values[name] = sum / w
			}
		}
		res.Rows[code] = row
	}

	for name := range columns {
		res.Columns = append(res.Columns, name)
	}
	sort.Strings(res.Columns)

	zap.L().Info("aggregate: schools aggregated",
		zap.String("level", string(level)),
		zap.Int("codes", len(res.Rows)),
		zap.Int("excluded_cells", res.Excluded),
	)

	return res
}

// Rollup aggregates county rows up to commuting zones, weighting each
// county by its Census 2000 population (weight 1 when the population is
// unknown). School counts sum. Counties missing from the equivalency table
// are dropped and counted in the second return value.
func Rollup(counties *Result, countyToCZ map[string]string, population map[string]float64) (*Result, int) {
	res := &Result{Level: model.LevelCZ, Rows: make(map[string]*Row)}

	accs := make(map[string]*accumulator)
	columns := make(map[string]bool)
	var dropped int

	codes := make([]string, 0, len(counties.Rows))
	for code := range counties.Rows {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, fips := range codes {
		row := counties.Rows[fips]
		cz := countyToCZ[fips]
		if cz == "" {
			dropped++
			continue
		}

		acc := accs[cz]
		if acc == nil {
			acc = &accumulator{
				sum:       make(map[string]float64),
				weightSum: make(map[string]float64),
				n:         make(map[string]int),
			}
			accs[cz] = acc
		}
		acc.count += row.SchoolCount

		weight := population[fips]
		if weight <= 0 {
			weight = 1
		}
		for name, v := range row.Values {
			acc.sum[name] += v * weight
			acc.weightSum[name] += weight
			acc.n[name]++
			columns[name] = true
		}
	}

	for cz, acc := range accs {
		row := &Row{Code: cz, SchoolCount: acc.count, Values: make(map[string]float64, len(acc.sum))}
		for name, sum := range acc.sum {
			if w := acc.weightSum[name]; w > 0 {
				row.Values[name] = sum / w
			}
		}
		res.Rows[cz] = row
	}

	for name := range columns {
		res.Columns = append(res.Columns, name)
	}
	sort.Strings(res.Columns)

	if dropped > 0 {
		zap.L().Warn("aggregate: counties without a commuting zone dropped from rollup",
			zap.Int("dropped", dropped),
		)
	}

	return res, dropped
}

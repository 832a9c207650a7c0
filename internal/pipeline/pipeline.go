// Package pipeline wires the run end to end: load, resolve, aggregate,
// join, write. One sequential pass over bounded in-memory tables; each
// stage consumes the prior stage's immutable output.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/aggregate"
	"github.com/ascending-macs/mobility-cli/internal/loader"
	"github.com/ascending-macs/mobility-cli/internal/mobility"
	"github.com/ascending-macs/mobility-cli/internal/model"
	"github.com/ascending-macs/mobility-cli/internal/resolver"
	"github.com/ascending-macs/mobility-cli/internal/store"
	"github.com/ascending-macs/mobility-cli/internal/writer"
)

// Output file names, kept compatible with the downstream analysis scripts.
const (
	CountyFile       = "county_edu_mob.csv"
	CZFile           = "cz_edu_mob.csv"
	CZFromCountyFile = "cz_from_county_edu_mob.csv"
	LinkageFile      = "school_tract_cz_merged.csv"
)

// inputs bundles everything loaded from the manifest.
type inputs struct {
	schools        []*model.School
	schoolReport   *loader.SchoolReport
	tracts         []model.Boundary
	counties       []model.Boundary
	crosswalk      *loader.Crosswalk
	mobilityCounty *model.MobilityTable
	mobilityCZ     *model.MobilityTable
	spec           loader.SchoolSpec
}

func load(m *loader.Manifest, withMobility bool) (*inputs, error) {
	in := &inputs{spec: m.Schools}

	var err error
	in.schools, in.schoolReport, err = loader.LoadSchools(m.Schools)
	if err != nil {
		return nil, err
	}

	if m.Tracts.Path != "" {
		in.tracts, err = loader.LoadBoundaries(m.Tracts)
		if err != nil {
			return nil, err
		}
	}
	if m.Counties.Path != "" {
		in.counties, err = loader.LoadBoundaries(m.Counties)
		if err != nil {
			return nil, err
		}
	}
	if len(in.tracts) == 0 && len(in.counties) == 0 {
		return nil, eris.New("pipeline: manifest names no boundary shapefiles")
	}

	in.crosswalk, err = loader.LoadCrosswalk(m.Crosswalk)
	if err != nil {
		return nil, err
	}

	if withMobility {
		in.mobilityCounty, err = loader.LoadMobility(m.MobilityCounty, model.LevelCounty)
		if err != nil {
			return nil, err
		}
		in.mobilityCZ, err = loader.LoadMobility(m.MobilityCZ, model.LevelCZ)
		if err != nil {
			return nil, err
		}
	}

	return in, nil
}

func (in *inputs) resolve() (*resolver.Result, error) {
	r, err := resolver.New(resolver.Config{
		Tracts:     in.tracts,
		Counties:   in.counties,
		CountyToCZ: in.crosswalk.CZByCounty,
	})
	if err != nil {
		return nil, err
	}
	return r.Resolve(in.schools), nil
}

// Run executes the full pipeline and writes the joined tables plus the
// linkage export into outDir. The ledger is optional; when present the
// run's quality counters are recorded.
func Run(ctx context.Context, m *loader.Manifest, outDir string, ledger *store.Ledger) (*store.RunSummary, error) {
	started := time.Now().UTC()

	in, err := load(m, true)
	if err != nil {
		return nil, err
	}

	resolved, err := in.resolve()
	if err != nil {
		return nil, err
	}

	countyAgg := aggregate.Schools(model.LevelCounty, in.schools, resolved.Codes(model.LevelCounty), in.spec.IsProportion)
	czAgg := aggregate.Schools(model.LevelCZ, in.schools, resolved.Codes(model.LevelCZ), in.spec.IsProportion)
	czFromCounty, rollupDropped := aggregate.Rollup(countyAgg, in.crosswalk.CZByCounty, in.crosswalk.PopulationByCounty)

	countyJoined, countyReport := mobility.Join(countyAgg, in.mobilityCounty)
	czJoined, czReport := mobility.Join(czAgg, in.mobilityCZ)
	czFCJoined, czFCReport := mobility.Join(czFromCounty, in.mobilityCZ)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "pipeline: create output dir %s", outDir)
	}

	if err := writer.WriteJoined(filepath.Join(outDir, CountyFile), model.LevelCounty, countyJoined, countyAgg.Columns, in.mobilityCounty.OutcomeColumns); err != nil {
		return nil, err
	}
	if err := writer.WriteJoined(filepath.Join(outDir, CZFile), model.LevelCZ, czJoined, czAgg.Columns, in.mobilityCZ.OutcomeColumns); err != nil {
		return nil, err
	}
	if err := writer.WriteJoined(filepath.Join(outDir, CZFromCountyFile), model.LevelCZ, czFCJoined, czFromCounty.Columns, in.mobilityCZ.OutcomeColumns); err != nil {
		return nil, err
	}
	if err := writer.WriteLinkage(filepath.Join(outDir, LinkageFile), in.schools, resolved.ByID); err != nil {
		return nil, err
	}

	summary := &store.RunSummary{
		StartedAt:         started,
		FinishedAt:        time.Now().UTC(),
		Schools:           len(in.schools),
		TractBoundaries:   len(in.tracts),
		CountyBoundaries:  len(in.counties),
		UnresolvedTract:   resolved.Unresolved[model.LevelTract],
		UnresolvedCounty:  resolved.Unresolved[model.LevelCounty],
		UnresolvedCZ:      resolved.Unresolved[model.LevelCZ],
		ExcludedCells:     countyAgg.Excluded + czAgg.Excluded,
		CountyJoined:      len(countyJoined),
		CZJoined:          len(czJoined),
		DroppedAggregates: countyReport.DroppedAggregates + czReport.DroppedAggregates + czFCReport.DroppedAggregates + rollupDropped,
		DroppedMobility:   countyReport.DroppedMobility + czReport.DroppedMobility,
	}

	if ledger != nil {
		if err := ledger.Record(ctx, summary); err != nil {
			// A failed ledger write must not discard finished output.
			zap.L().Warn("pipeline: failed to record run summary", zap.Error(err))
		}
	}

	return summary, nil
}

// Resolve runs only the linkage stages and writes the school to geography
// linkage table into outDir.
func Resolve(m *loader.Manifest, outDir string) (*resolver.Result, error) {
	in, err := load(m, false)
	if err != nil {
		return nil, err
	}

	resolved, err := in.resolve()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "pipeline: create output dir %s", outDir)
	}
	if err := writer.WriteLinkage(filepath.Join(outDir, LinkageFile), in.schools, resolved.ByID); err != nil {
		return nil, err
	}
	return resolved, nil
}

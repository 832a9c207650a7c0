package resolver

import (
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
	"github.com/ascending-macs/mobility-cli/internal/transform"
)

// Config supplies the boundary sets and the county to commuting zone
// equivalency used to build a Resolver.
type Config struct {
	// Tracts is optional; when present each school also gets a tract GEOID
	// and the county falls back to the tract's FIPS prefix if the county
	// shapes miss the point.
	Tracts     []model.Boundary
	Counties   []model.Boundary
	CountyToCZ map[string]string
}

// Resolver is a pure function of its construction inputs: the same schools
// always resolve to the same placements.
type Resolver struct {
	tracts     *Index
	counties   *Index
	countyToCZ map[string]string
}

// Result is the resolved mapping for one school set, with per-level
// unresolved counts. Schools the resolver could not place at a level carry
// an empty code there; they are reported, never fabricated from a nearest
// boundary.
type Result struct {
	Placements []model.Placement
	ByID       map[string]model.Placement
	Unresolved map[model.Level]int
}

// Codes returns school ID → code for one level, skipping unresolved
// schools.
func (r *Result) Codes(level model.Level) map[string]string {
	codes := make(map[string]string, len(r.Placements))
	for _, p := range r.Placements {
		if code := p.Code(level); code != "" {
			codes[p.SchoolID] = code
		}
	}
	return codes
}

// New builds a Resolver from boundary sets. At least one boundary level is
// required.
func New(cfg Config) (*Resolver, error) {
	r := &Resolver{countyToCZ: cfg.CountyToCZ}

	if len(cfg.Tracts) > 0 {
		ix, err := NewIndex(model.LevelTract, cfg.Tracts)
		if err != nil {
			return nil, err
		}
		r.tracts = ix
	}
	if len(cfg.Counties) > 0 {
		ix, err := NewIndex(model.LevelCounty, cfg.Counties)
		if err != nil {
			return nil, err
		}
		r.counties = ix
	}
	return r, nil
}

// Resolve maps every school to its geographic codes. Deterministic: no
// retries, no I/O, first-match tie-break within each level.
func (r *Resolver) Resolve(schools []*model.School) *Result {
	res := &Result{
		Placements: make([]model.Placement, 0, len(schools)),
		ByID:       make(map[string]model.Placement, len(schools)),
		Unresolved: map[model.Level]int{
			model.LevelTract:  0,
			model.LevelCounty: 0,
			model.LevelCZ:     0,
		},
	}

	for _, s := range schools {
		p := model.Placement{SchoolID: s.ID}

		if r.tracts != nil {
			if code, ok := r.tracts.Locate(s.Lon, s.Lat); ok {
				p.TractGEOID = transform.NormalizeTractGEOID(code)
			}
		}

		if r.counties != nil {
			if code, ok := r.counties.Locate(s.Lon, s.Lat); ok {
				p.CountyFIPS = transform.NormalizeCountyFIPS(code)
			}
		}
		if p.CountyFIPS == "" && p.TractGEOID != "" {
			p.CountyFIPS = transform.CountyFromTract(p.TractGEOID)
		}

		if p.CountyFIPS != "" {
			p.CZID = r.countyToCZ[p.CountyFIPS]
		}

		if r.tracts != nil && p.TractGEOID == "" {
			res.Unresolved[model.LevelTract]++
		}
		if p.CountyFIPS == "" {
			res.Unresolved[model.LevelCounty]++
		}
		if p.CZID == "" {
			res.Unresolved[model.LevelCZ]++
		}

		res.Placements = append(res.Placements, p)
		res.ByID[s.ID] = p
	}

	zap.L().Info("resolver: schools resolved",
		zap.Int("schools", len(schools)),
		zap.Int("unresolved_tract", res.Unresolved[model.LevelTract]),
		zap.Int("unresolved_county", res.Unresolved[model.LevelCounty]),
		zap.Int("unresolved_cz", res.Unresolved[model.LevelCZ]),
	)

	return res
}

package loader

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/transform"
)

// Crosswalk links 5-digit county FIPS codes to 1990 commuting zones, with
// Census 2000 county population for weighted roll-ups.
type Crosswalk struct {
	CZByCounty         map[string]string
	PopulationByCounty map[string]float64
}

// CZ returns the commuting zone for a county, or "" when the county is not
// in the equivalency table.
func (c *Crosswalk) CZ(countyFIPS string) string {
	return c.CZByCounty[transform.NormalizeCountyFIPS(countyFIPS)]
}

// LoadCrosswalk reads the county to commuting zone equivalency spreadsheet.
// Rows without a county FIPS or commuting zone are skipped; a missing
// population cell leaves that county unweighted.
func LoadCrosswalk(spec CrosswalkSpec) (*Crosswalk, error) {
	header, rows, err := readSheet(spec.Path, spec.Sheet, spec.HeaderRow)
	if err != nil {
		return nil, err
	}

	czIdx := headerIndex(header, spec.CZColumn)
	countyIdx := headerIndex(header, spec.CountyColumn)
	if czIdx < 0 || countyIdx < 0 {
		return nil, formatErr("loader: crosswalk %s missing column %q or %q", spec.Path, spec.CZColumn, spec.CountyColumn)
	}
	popIdx := headerIndex(header, spec.PopulationColumn)

	cw := &Crosswalk{
		CZByCounty:         make(map[string]string),
		PopulationByCounty: make(map[string]float64),
	}
	var skipped int
	for _, row := range rows {
		county := transform.NormalizeCountyFIPS(at(row, countyIdx))
		cz := transform.NormalizeCZ(at(row, czIdx))
		if county == "" || cz == "" {
			skipped++
			continue
		}
		cw.CZByCounty[county] = cz

		if popIdx >= 0 {
			if pop := parseFloat(at(row, popIdx)); pop.Valid && pop.Value > 0 {
				cw.PopulationByCounty[county] = pop.Value
			}
		}
	}

	zap.L().Info("loader: crosswalk loaded",
		zap.String("path", spec.Path),
		zap.Int("counties", len(cw.CZByCounty)),
		zap.Int("skipped", skipped),
	)

	return cw, nil
}

// headerIndex finds a column by name, ignoring case and padding.
func headerIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// at returns the trimmed cell at idx, or "" for short rows.
func at(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

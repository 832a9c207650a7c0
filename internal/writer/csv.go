// Package writer persists the pipeline's output tables as CSV.
package writer

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
	"github.com/ascending-macs/mobility-cli/internal/transform"
)

// codeHeader names the geographic code column per level, matching the
// downstream analysis scripts.
func codeHeader(level model.Level) string {
	switch level {
	case model.LevelTract:
		return "tract_geoid"
	case model.LevelCounty:
		return "county_fips"
	case model.LevelCZ:
		return "cz_id"
	}
	return "code"
}

// WriteJoined writes one joined table: code, school count, aggregate
// attribute columns, mobility outcome columns. County tables also carry a
// state column derived from the FIPS prefix. Column order is fixed by the
// given slices so repeated runs produce identical files.
func WriteJoined(path string, level model.Level, records []model.JoinedRecord, attributes, outcomes []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "writer: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)

	header := []string{codeHeader(level)}
	if level == model.LevelCounty {
		header = append(header, "state")
	}
	header = append(header, "school_count")
	header = append(header, attributes...)
	header = append(header, outcomes...)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "writer: write header")
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Code)
		if level == model.LevelCounty {
			row = append(row, transform.StateFromCountyFIPS(rec.Code))
		}
		row = append(row, strconv.Itoa(rec.SchoolCount))
		for _, name := range attributes {
			row = append(row, formatCell(rec.Attributes, name))
		}
		for _, name := range outcomes {
			row = append(row, formatCell(rec.Outcomes, name))
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "writer: write row %s", rec.Code)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "writer: flush %s", path)
	}

	zap.L().Info("writer: joined table written",
		zap.String("path", path),
		zap.String("level", string(level)),
		zap.Int("rows", len(records)),
	)
	return nil
}

// WriteLinkage writes the school→tract→county→cz linkage table, one row
// per school in load order, carrying the school's name and state through.
// Unresolved levels stay as empty cells so gaps remain auditable.
func WriteLinkage(path string, schools []*model.School, byID map[string]model.Placement) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "writer: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"universal-id", "name", "state", "tract_geoid", "county_fips", "cz_id"}); err != nil {
		return eris.Wrap(err, "writer: write header")
	}
	for _, s := range schools {
		p := byID[s.ID]
		if err := w.Write([]string{s.ID, s.Name, s.State, p.TractGEOID, p.CountyFIPS, p.CZID}); err != nil {
			return eris.Wrapf(err, "writer: write row %s", s.ID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "writer: flush %s", path)
	}

	zap.L().Info("writer: linkage table written",
		zap.String("path", path),
		zap.Int("rows", len(schools)),
	)
	return nil
}

// formatCell renders a value, or "" when the attribute is absent for this
// code (missing stays visibly missing, never zero).
func formatCell(values map[string]float64, name string) string {
	v, ok := values[name]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package loader

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
)

// SchoolReport summarizes data quality observed while loading schools.
type SchoolReport struct {
	Rows             int
	SkippedNoID      int
	SkippedNoCoords  int
	AttributeColumns []string
}

// LoadSchools reads the school table into typed records. Columns named by
// the spec become identity fields; every remaining column that parses as
// numeric for at least one row becomes an attribute. Missing or
// unparseable cells stay tagged invalid rather than collapsing to zero.
// Records without an identifier or a parseable coordinate pair are skipped
// and counted, not silently merged.
func LoadSchools(spec SchoolSpec) ([]*model.School, *SchoolReport, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: open schools %s", spec.Path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, formatErr("loader: read schools csv: %v", err)
	}
	if len(records) < 1 {
		return nil, nil, formatErr("loader: schools table %s is empty", spec.Path)
	}

	headers := records[0]
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}

	required := []string{spec.IDColumn, spec.LatColumn, spec.LonColumn}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, nil, formatErr("loader: schools table missing required column %q", name)
		}
	}

	identity := map[string]bool{
		spec.IDColumn:         true,
		spec.NameColumn:       true,
		spec.StateColumn:      true,
		spec.LatColumn:        true,
		spec.LonColumn:        true,
		spec.EnrollmentColumn: true,
	}

	// Columns with at least one numeric cell are attributes; the rest are
	// descriptive (URLs, addresses) and dropped.
	numericSeen := make(map[string]bool)

	report := &SchoolReport{}
	var schools []*model.School
	for _, row := range records[1:] {
		report.Rows++

		id := cell(row, col, spec.IDColumn)
		if id == "" {
			report.SkippedNoID++
			continue
		}

		lat, latErr := strconv.ParseFloat(cell(row, col, spec.LatColumn), 64)
		lon, lonErr := strconv.ParseFloat(cell(row, col, spec.LonColumn), 64)
		if latErr != nil || lonErr != nil {
			report.SkippedNoCoords++
			continue
		}

		s := &model.School{
			ID:         id,
			Name:       cell(row, col, spec.NameColumn),
			State:      cell(row, col, spec.StateColumn),
			Lat:        lat,
			Lon:        lon,
			Enrollment: parseFloat(cell(row, col, spec.EnrollmentColumn)),
			Attributes: make(map[string]model.Float),
		}

		for name, idx := range col {
			if identity[name] || name == "" {
				continue
			}
			var raw string
			if idx < len(row) {
				raw = strings.TrimSpace(row[idx])
			}
			v := parseFloat(raw)
			s.Attributes[name] = v
			if v.Valid {
				numericSeen[name] = true
			}
		}

		schools = append(schools, s)
	}

	// Drop descriptive columns that never parsed as numeric.
	for _, s := range schools {
		for name := range s.Attributes {
			if !numericSeen[name] {
				delete(s.Attributes, name)
			}
		}
	}
	for name := range numericSeen {
		report.AttributeColumns = append(report.AttributeColumns, name)
	}

	zap.L().Info("loader: schools loaded",
		zap.Int("rows", report.Rows),
		zap.Int("schools", len(schools)),
		zap.Int("skipped_no_id", report.SkippedNoID),
		zap.Int("skipped_no_coords", report.SkippedNoCoords),
		zap.Int("attribute_columns", len(report.AttributeColumns)),
	)

	return schools, report, nil
}

// cell returns the trimmed value at the named column, or "" when the row is
// short or the column is unknown.
func cell(row []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat parses a numeric cell, tagging empty or non-numeric values as
// invalid. NaN and infinities are treated as missing.
func parseFloat(s string) model.Float {
	if s == "" {
		return model.Float{}
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return model.Float{}
		}
		return model.FloatOf(v / 100)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Float{}
	}
	return model.FloatOf(v)
}

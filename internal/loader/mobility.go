package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
	"github.com/ascending-macs/mobility-cli/internal/transform"
)

// LoadMobility reads one mobility statistics table. CSV and XLSX sources
// are both accepted; the spec names the code column and the outcome
// columns. Outcome values pass through verbatim. Rows without a code or
// without any parseable outcome are skipped and counted.
func LoadMobility(spec TableSpec, level model.Level) (*model.MobilityTable, error) {
	var header []string
	var rows [][]string
	var err error

	if strings.EqualFold(filepath.Ext(spec.Path), ".csv") && spec.Sheet == "" {
		header, rows, err = readCSVTable(spec.Path, spec.HeaderRow)
	} else {
		header, rows, err = readSheet(spec.Path, spec.Sheet, spec.HeaderRow)
	}
	if err != nil {
		return nil, err
	}

	codeIdx := headerIndex(header, spec.CodeColumn)
	if codeIdx < 0 {
		return nil, formatErr("loader: mobility table %s missing code column %q", spec.Path, spec.CodeColumn)
	}

	outIdx := make([]int, len(spec.Outcomes))
	table := &model.MobilityTable{
		Level: level,
		Rows:  make(map[string]map[string]float64),
	}
	for i, out := range spec.Outcomes {
		idx := headerIndex(header, out.Column)
		if idx < 0 {
			return nil, formatErr("loader: mobility table %s missing outcome column %q", spec.Path, out.Column)
		}
		outIdx[i] = idx
		table.OutcomeColumns = append(table.OutcomeColumns, out.As)
	}

	if spec.DropRows > 0 && spec.DropRows <= len(rows) {
		rows = rows[spec.DropRows:]
	}

	var skipped int
	for _, row := range rows {
		code := transform.ZeroPad(at(row, codeIdx), spec.CodeWidth)
		if code == "" {
			skipped++
			continue
		}

		outcomes := make(map[string]float64, len(spec.Outcomes))
		for i, out := range spec.Outcomes {
			if v := parseFloat(at(row, outIdx[i])); v.Valid {
				outcomes[out.As] = v.Value
			}
		}
		if len(outcomes) == 0 {
			skipped++
			continue
		}
		table.Rows[code] = outcomes
	}

	zap.L().Info("loader: mobility table loaded",
		zap.String("path", spec.Path),
		zap.String("level", string(level)),
		zap.Int("codes", len(table.Rows)),
		zap.Int("skipped", skipped),
	)

	return table, nil
}

// readCSVTable reads a CSV file into a header row plus data rows, skipping
// headerRow leading rows before the header.
func readCSVTable(path string, headerRow int) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, formatErr("loader: read csv %s: %v", path, err)
	}
	if headerRow >= len(records) {
		return nil, nil, formatErr("loader: header row %d out of range in %s (%d rows)", headerRow, path, len(records))
	}
	return records[headerRow], records[headerRow+1:], nil
}

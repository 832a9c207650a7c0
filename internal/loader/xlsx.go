package loader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readSheet reads one worksheet into a header row plus data rows. The
// header is taken from headerRow (zero-based); earlier rows are discarded.
// An empty sheet name selects the first worksheet.
func readSheet(path, sheetName string, headerRow int) ([]string, [][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: open xlsx %s", path)
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, nil, formatErr("loader: sheet %q not found in %s", sheetName, path)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, nil, formatErr("loader: %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}

	if headerRow >= len(sheet.Rows) {
		return nil, nil, formatErr("loader: header row %d out of range in %s (%d rows)", headerRow, path, len(sheet.Rows))
	}

	header := rowToStrings(sheet.Rows[headerRow])
	var rows [][]string
	for _, row := range sheet.Rows[headerRow+1:] {
		rows = append(rows, rowToStrings(row))
	}
	return header, rows, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}

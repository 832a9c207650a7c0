package loader

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascending-macs/mobility-cli/internal/model"
)

func TestLoadMobilityCSV(t *testing.T) {
	raw := "CZ,CZ Name,\"AM, 80-82 Cohort\"\n" +
		"100,Johnson City,42.1\n" +
		"200,Morristown,38.6\n" +
		"300,Knoxville,\n"
	path := writeFile(t, "mobility_cz.csv", raw)

	spec := TableSpec{
		Path:       path,
		CodeColumn: "CZ",
		CodeWidth:  5,
		Outcomes:   []OutcomeSpec{{Column: "AM, 80-82 Cohort", As: "absolute_upward_mobility"}},
	}

	table, err := LoadMobility(spec, model.LevelCZ)
	require.NoError(t, err)
	assert.Equal(t, model.LevelCZ, table.Level)
	assert.Equal(t, []string{"absolute_upward_mobility"}, table.OutcomeColumns)

	// Codes are zero padded to the declared width; the empty-outcome row
	// is dropped.
	require.Len(t, table.Rows, 2)
	assert.InDelta(t, 42.1, table.Rows["00100"]["absolute_upward_mobility"], 1e-9)
	assert.InDelta(t, 38.6, table.Rows["00200"]["absolute_upward_mobility"], 1e-9)
}

func TestLoadMobilityDropRows(t *testing.T) {
	raw := "County FIPS Code,County Name,Absolute Upward Mobility\n" +
		"County FIPS Code,County Name,Absolute Upward Mobility\n" +
		"17031,Cook,39.4\n"
	path := writeFile(t, "mobility_county.csv", raw)

	spec := TableSpec{
		Path:       path,
		DropRows:   1,
		CodeColumn: "County FIPS Code",
		CodeWidth:  5,
		Outcomes:   []OutcomeSpec{{Column: "Absolute Upward Mobility", As: "absolute_upward_mobility"}},
	}

	table, err := LoadMobility(spec, model.LevelCounty)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 39.4, table.Rows["17031"]["absolute_upward_mobility"], 1e-9)
}

func TestLoadMobilityMissingOutcomeColumn(t *testing.T) {
	path := writeFile(t, "mobility.csv", "CZ,Other\n100,1\n")

	spec := TableSpec{
		Path:       path,
		CodeColumn: "CZ",
		Outcomes:   []OutcomeSpec{{Column: "AM, 80-82 Cohort", As: "absolute_upward_mobility"}},
	}

	_, err := LoadMobility(spec, model.LevelCZ)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataFormat))
}

func TestLoadMobilityFloatCodes(t *testing.T) {
	// Spreadsheet exports often render integer FIPS codes as floats.
	raw := "County FIPS Code,Absolute Upward Mobility\n1001.0,40.2\n"
	path := writeFile(t, "mobility.csv", raw)

	spec := TableSpec{
		Path:       path,
		CodeColumn: "County FIPS Code",
		CodeWidth:  5,
		Outcomes:   []OutcomeSpec{{Column: "Absolute Upward Mobility", As: "absolute_upward_mobility"}},
	}

	table, err := LoadMobility(spec, model.LevelCounty)
	require.NoError(t, err)
	_, ok := table.Rows["01001"]
	assert.True(t, ok)
}

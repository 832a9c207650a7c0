package loader

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifestDefaults(t *testing.T) {
	yaml := `
schools:
  path: data/schools.csv
tracts:
  path: data/shapes/tracts.shp
counties:
  path: data/shapes/counties.shp
crosswalk:
  path: data/czlma903.xls.xlsx
  sheet: Sheet1
mobility_county:
  path: data/online_table3.xlsx
  sheet: Online Data Table 3
  drop_rows: 1
mobility_cz:
  path: data/online_table5.csv
`
	path := writeFile(t, "manifest.yaml", yaml)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "universal-id", m.Schools.IDColumn)
	assert.Equal(t, "lat", m.Schools.LatColumn)
	assert.Equal(t, "GEOID", m.Tracts.CodeField)
	assert.Equal(t, "Commuting Zone ID, 1990", m.Crosswalk.CZColumn)
	assert.Equal(t, "FIPS", m.Crosswalk.CountyColumn)
	assert.Equal(t, "County FIPS Code", m.MobilityCounty.CodeColumn)
	assert.Equal(t, 1, m.MobilityCounty.DropRows)
	assert.Equal(t, "CZ", m.MobilityCZ.CodeColumn)
	assert.Equal(t, 5, m.MobilityCZ.CodeWidth)

	require.Len(t, m.MobilityCZ.Outcomes, 1)
	assert.Equal(t, "AM, 80-82 Cohort", m.MobilityCZ.Outcomes[0].Column)
	assert.Equal(t, "absolute_upward_mobility", m.MobilityCZ.Outcomes[0].As)
}

func TestLoadManifestOverrides(t *testing.T) {
	yaml := `
schools:
  path: data/schools.csv
  id_column: nces_id
  proportion_columns: [pos, neg]
mobility_cz:
  path: data/cz.csv
  code_column: commuting_zone
  code_width: 4
`
	path := writeFile(t, "manifest.yaml", yaml)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "nces_id", m.Schools.IDColumn)
	assert.Equal(t, "commuting_zone", m.MobilityCZ.CodeColumn)
	assert.Equal(t, 4, m.MobilityCZ.CodeWidth)
	assert.True(t, m.Schools.IsProportion("pos"))
	assert.False(t, m.Schools.IsProportion("rating"))
	assert.True(t, m.Schools.IsProportion("demographics_white"))
}

func TestLoadManifestBadYAML(t *testing.T) {
	path := writeFile(t, "manifest.yaml", "schools: [not a map\n")

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataFormat))
}

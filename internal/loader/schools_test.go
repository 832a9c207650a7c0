package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func schoolSpec(path string) SchoolSpec {
	s := SchoolSpec{Path: path}
	m := Manifest{Schools: s}
	m.applyDefaults()
	m.Schools.Path = path
	return m.Schools
}

func TestLoadSchools(t *testing.T) {
	csv := "universal-id,name,state,lat,lon,enrollment,rating,demographics_black,overview-url\n" +
		"s1,Lincoln Elementary,IL,41.88,-87.63,450,8,0.32,https://example.com/s1\n" +
		"s2,Oak Park Middle,IL,41.89,-87.79,,6,0.12,https://example.com/s2\n"
	spec := schoolSpec(writeFile(t, "schools.csv", csv))

	schools, report, err := LoadSchools(spec)
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, 2, report.Rows)

	s1 := schools[0]
	assert.Equal(t, "s1", s1.ID)
	assert.Equal(t, "Lincoln Elementary", s1.Name)
	assert.InDelta(t, 41.88, s1.Lat, 1e-9)
	assert.InDelta(t, -87.63, s1.Lon, 1e-9)
	require.True(t, s1.Enrollment.Valid)
	assert.InDelta(t, 450, s1.Enrollment.Value, 1e-9)
	assert.InDelta(t, 8, s1.Attributes["rating"].Value, 1e-9)
	assert.InDelta(t, 0.32, s1.Attributes["demographics_black"].Value, 1e-9)

	// Descriptive columns never parse as numeric and are dropped.
	_, ok := s1.Attributes["overview-url"]
	assert.False(t, ok)

	// Missing enrollment stays tagged, not zeroed.
	assert.False(t, schools[1].Enrollment.Valid)
}

func TestLoadSchoolsMissingColumnFatal(t *testing.T) {
	csv := "universal-id,name\ns1,Lincoln\n"
	spec := schoolSpec(writeFile(t, "schools.csv", csv))

	_, _, err := LoadSchools(spec)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataFormat))
}

func TestLoadSchoolsSkipsBadRows(t *testing.T) {
	csv := "universal-id,lat,lon,rating\n" +
		"s1,41.88,-87.63,8\n" +
		",41.89,-87.79,6\n" +
		"s3,not-a-lat,-87.70,5\n"
	spec := schoolSpec(writeFile(t, "schools.csv", csv))

	schools, report, err := LoadSchools(spec)
	require.NoError(t, err)
	assert.Len(t, schools, 1)
	assert.Equal(t, 1, report.SkippedNoID)
	assert.Equal(t, 1, report.SkippedNoCoords)
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		value float64
		valid bool
	}{
		{"4.5", 4.5, true},
		{"1,250", 1250, true},
		{"32%", 0.32, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got := parseFloat(tt.input)
		assert.Equal(t, tt.valid, got.Valid, "input: %q", tt.input)
		if tt.valid {
			assert.InDelta(t, tt.value, got.Value, 1e-9, "input: %q", tt.input)
		}
	}
}

// Package loader reads the raw input tables (school records, boundary
// shapefiles, the county to commuting zone crosswalk, and mobility
// statistics) into typed in-memory tables.
package loader

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrDataFormat marks fatal input problems: a required column or sheet is
// absent, or a file cannot be parsed at all. Checked with eris.Is.
var ErrDataFormat = eris.New("malformed input table")

// formatErr builds a DataFormat error so callers can distinguish fatal
// input problems from recoverable data-quality gaps.
func formatErr(msg string, args ...any) error {
	return eris.Wrapf(ErrDataFormat, msg, args...)
}

// SchoolSpec maps the school table's columns.
type SchoolSpec struct {
	Path             string   `yaml:"path"`
	IDColumn         string   `yaml:"id_column"`
	NameColumn       string   `yaml:"name_column"`
	StateColumn      string   `yaml:"state_column"`
	LatColumn        string   `yaml:"lat_column"`
	LonColumn        string   `yaml:"lon_column"`
	EnrollmentColumn string   `yaml:"enrollment_column"`
	// ProportionColumns and ProportionPrefixes mark share-type attributes
	// (values in [0,1]) that aggregate as enrollment-weighted means.
	ProportionColumns  []string `yaml:"proportion_columns"`
	ProportionPrefixes []string `yaml:"proportion_prefixes"`
}

// IsProportion reports whether the named attribute column is a share.
func (s SchoolSpec) IsProportion(column string) bool {
	for _, c := range s.ProportionColumns {
		if c == column {
			return true
		}
	}
	for _, p := range s.ProportionPrefixes {
		if len(column) >= len(p) && column[:len(p)] == p {
			return true
		}
	}
	return false
}

// ShapeSpec points at one boundary shapefile and names its code field.
type ShapeSpec struct {
	Path      string `yaml:"path"`
	CodeField string `yaml:"code_field"`
	NameField string `yaml:"name_field"`
}

// CrosswalkSpec maps the county to commuting zone equivalency spreadsheet.
type CrosswalkSpec struct {
	Path             string `yaml:"path"`
	Sheet            string `yaml:"sheet"`
	HeaderRow        int    `yaml:"header_row"`
	CZColumn         string `yaml:"cz_column"`
	CountyColumn     string `yaml:"county_column"`
	PopulationColumn string `yaml:"population_column"`
}

// OutcomeSpec renames one mobility outcome column on the way in.
type OutcomeSpec struct {
	Column string `yaml:"column"`
	As     string `yaml:"as"`
}

// TableSpec maps one mobility statistics table. A CSV table leaves Sheet
// empty; an XLSX table names the sheet to read.
type TableSpec struct {
	Path       string        `yaml:"path"`
	Sheet      string        `yaml:"sheet"`
	HeaderRow  int           `yaml:"header_row"`
	// DropRows discards leading data rows after the header (some source
	// spreadsheets repeat the header as the first data row).
	DropRows   int           `yaml:"drop_rows"`
	CodeColumn string        `yaml:"code_column"`
	CodeWidth  int           `yaml:"code_width"`
	Outcomes   []OutcomeSpec `yaml:"outcomes"`
}

// Manifest describes every input table for one pipeline run.
type Manifest struct {
	Schools        SchoolSpec    `yaml:"schools"`
	Tracts         ShapeSpec     `yaml:"tracts"`
	Counties       ShapeSpec     `yaml:"counties"`
	Crosswalk      CrosswalkSpec `yaml:"crosswalk"`
	MobilityCounty TableSpec     `yaml:"mobility_county"`
	MobilityCZ     TableSpec     `yaml:"mobility_cz"`
}

// LoadManifest reads a YAML manifest and fills column-name defaults that
// match the upstream GreatSchools and Opportunity Insights exports.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, formatErr("loader: parse manifest %s: %v", path, err)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	s := &m.Schools
	setDefault(&s.IDColumn, "universal-id")
	setDefault(&s.NameColumn, "name")
	setDefault(&s.StateColumn, "state")
	setDefault(&s.LatColumn, "lat")
	setDefault(&s.LonColumn, "lon")
	setDefault(&s.EnrollmentColumn, "enrollment")
	if s.ProportionPrefixes == nil {
		s.ProportionPrefixes = []string{"demographics_"}
	}
	if s.ProportionColumns == nil {
		s.ProportionColumns = []string{"neg", "neu", "pos"}
	}

	setDefault(&m.Tracts.CodeField, "GEOID")
	setDefault(&m.Tracts.NameField, "NAME")
	setDefault(&m.Counties.CodeField, "GEOID")
	setDefault(&m.Counties.NameField, "NAME")

	cw := &m.Crosswalk
	setDefault(&cw.CZColumn, "Commuting Zone ID, 1990")
	setDefault(&cw.CountyColumn, "FIPS")
	setDefault(&cw.PopulationColumn, "Census 2000 population")

	mc := &m.MobilityCounty
	setDefault(&mc.CodeColumn, "County FIPS Code")
	if mc.CodeWidth == 0 {
		mc.CodeWidth = 5
	}
	if len(mc.Outcomes) == 0 {
		mc.Outcomes = []OutcomeSpec{{Column: "Absolute Upward Mobility", As: "absolute_upward_mobility"}}
	}

	mz := &m.MobilityCZ
	setDefault(&mz.CodeColumn, "CZ")
	if mz.CodeWidth == 0 {
		mz.CodeWidth = 5
	}
	if len(mz.Outcomes) == 0 {
		mz.Outcomes = []OutcomeSpec{{Column: "AM, 80-82 Cohort", As: "absolute_upward_mobility"}}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Package model defines the domain types shared across the pipeline stages.
package model

// Float is a numeric cell with an explicit missing tag. Missing or
// unparseable values stay invalid rather than collapsing to zero.
type Float struct {
	Value float64
	Valid bool
}

// FloatOf returns a valid Float holding v.
func FloatOf(v float64) Float {
	return Float{Value: v, Valid: true}
}

// School is one scraped school record. Immutable once loaded.
type School struct {
	ID         string
	Name       string
	State      string
	Lat        float64
	Lon        float64
	Enrollment Float
	// Attributes holds every numeric column from the school table keyed by
	// header name: ratings, demographic shares, review sentiment scores.
	Attributes map[string]Float
}

// Level identifies a geographic hierarchy level.
type Level string

const (
	LevelTract  Level = "tract"
	LevelCounty Level = "county"
	LevelCZ     Level = "cz"
)

// Placement is the resolved geography for one school. Empty codes mean the
// school could not be placed at that level.
type Placement struct {
	SchoolID   string
	TractGEOID string
	CountyFIPS string
	CZID       string
}

// Code returns the placement code for the given level.
func (p Placement) Code(level Level) string {
	switch level {
	case LevelTract:
		return p.TractGEOID
	case LevelCounty:
		return p.CountyFIPS
	case LevelCZ:
		return p.CZID
	}
	return ""
}

package model

// MobilityTable holds mobility outcome statistics keyed by geographic code.
// Values pass through the pipeline untransformed.
type MobilityTable struct {
	Level Level
	// OutcomeColumns preserves the output column order.
	OutcomeColumns []string
	// Rows maps zero-padded geographic code to outcome name to value.
	Rows map[string]map[string]float64
}

// JoinedRecord is one output row: a geographic code present in both the
// aggregate set and the mobility set.
type JoinedRecord struct {
	Code        string
	SchoolCount int
	Attributes  map[string]float64
	Outcomes    map[string]float64
}

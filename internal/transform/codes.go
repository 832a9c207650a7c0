// Package transform normalizes geographic identifiers so tables from
// different sources join on the same key format.
package transform

import "strings"

// ZeroPad left-pads a code with zeros to the given width. Codes already at
// or beyond the width are returned trimmed but otherwise unchanged.
func ZeroPad(code string, width int) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	// Spreadsheet exports often carry a float tail ("17031.0").
	if i := strings.IndexByte(code, '.'); i >= 0 {
		code = code[:i]
	}
	for len(code) < width {
		code = "0" + code
	}
	return code
}

// NormalizeCountyFIPS returns the 5-digit state+county FIPS code.
func NormalizeCountyFIPS(code string) string {
	return ZeroPad(code, 5)
}

// NormalizeCZ returns the 5-digit 1990 commuting zone identifier.
func NormalizeCZ(code string) string {
	return ZeroPad(code, 5)
}

// NormalizeTractGEOID returns the 11-digit state+county+tract GEOID.
func NormalizeTractGEOID(code string) string {
	return ZeroPad(code, 11)
}

// CountyFromTract extracts the 5-digit county FIPS from an 11-digit tract
// GEOID. Returns "" when the GEOID is malformed.
func CountyFromTract(geoid string) string {
	geoid = NormalizeTractGEOID(geoid)
	if len(geoid) != 11 {
		return ""
	}
	return geoid[:5]
}

// statePostal maps state FIPS prefixes to postal abbreviations for the
// states covered by the study area.
var statePostal = map[string]string{
	"17": "IL",
	"18": "IN",
	"26": "MI",
	"55": "WI",
}

// StateFromCountyFIPS returns the postal abbreviation for the state portion
// of a 5-digit county FIPS code, or "" when unknown.
func StateFromCountyFIPS(fips string) string {
	fips = NormalizeCountyFIPS(fips)
	if len(fips) < 2 {
		return ""
	}
	return statePostal[fips[:2]]
}

// Package model defines the internal data structures used by the report engine.
package model

// UnmappedMarker is the Original value of a LicenseLinkSet built from
// unmapped license entries rather than an SPDX expression.
const UnmappedMarker = "*unmapped*"

// LicenseLink is a single license reference that can be rendered as a hyperlink.
type LicenseLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LicenseLinkSet is a decoded license field: the source text plus one link per
// license found in it, in source order.
type LicenseLinkSet struct {
	Original  string        `json:"original"`
	Extracted []LicenseLink `json:"extracted"`
}

// Unmapped reports whether the set was decoded from unmapped license entries.
func (s LicenseLinkSet) Unmapped() bool {
	return s.Original == UnmappedMarker
}

// Record is a normalized JSON object. Values are whatever the JSON decoder
// produced (string, float64, bool, nil, []any, map[string]any) except for
// license fields, which hold a LicenseLinkSet once decoded.
type Record map[string]any

// String returns the value stored under key if it is a string, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// LinkSet returns the decoded license set stored under key.
func (r Record) LinkSet(key string) (LicenseLinkSet, bool) {
	s, ok := r[key].(LicenseLinkSet)
	return s, ok
}

// License returns the license information to show for the record: the
// processed SPDX expression when present, the unmapped entries otherwise.
func (r Record) License() (LicenseLinkSet, bool) {
	if s, ok := r.LinkSet("dlp_spdx_expression"); ok {
		return s, true
	}
	if s, ok := r.LinkSet("dlp_unmapped"); ok {
		return s, true
	}
	return LicenseLinkSet{}, false
}

// Package license decodes the license fields of a scan report into link lists.
package license

import (
	"errors"
	"fmt"
	"strings"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// SPDXBaseURL is the SPDX license list; a license page is SPDXBaseURL + identifier.
const SPDXBaseURL = "https://spdx.org/licenses/"

// ErrMalformedUnmapped is wrapped by UnmappedEntryError.
var ErrMalformedUnmapped = errors.New("malformed unmapped license entry")

// UnmappedEntryError reports an unmapped entry with fewer than three
// pipe-delimited fields.
type UnmappedEntryError struct {
	Index int
	Entry string
}

func (e *UnmappedEntryError) Error() string {
	return fmt.Sprintf("unmapped entry %d %q: expected at least 3 '|' separated fields", e.Index, e.Entry)
}

func (e *UnmappedEntryError) Unwrap() error { return ErrMalformedUnmapped }

// connectives are removed in this order. OR is replaced by nothing, so the
// alternatives on both sides of it end up glued into a single token.
var connectives = []struct{ from, to string }{
	{" AND ", " "},
	{" WITH ", " "},
	{" OR ", ""},
}

// SPDXLicenseURL returns the SPDX license list page for an identifier.
func SPDXLicenseURL(name string) string {
	return SPDXBaseURL + name
}

// DecodeSPDXExpression splits an SPDX license expression into one link per
// license identifier. Identifiers are not validated.
//
//	"MIT AND Apache-2.0" -> MIT, Apache-2.0
//	"A OR B"             -> AB
func DecodeSPDXExpression(expr string) model.LicenseLinkSet {
	filtered := expr
	for _, c := range connectives {
		filtered = strings.ReplaceAll(filtered, c.from, c.to)
	}

	set := model.LicenseLinkSet{Original: expr, Extracted: []model.LicenseLink{}}
	for _, token := range strings.Split(filtered, " ") {
		if token == "" {
			continue
		}
		set.Extracted = append(set.Extracted, model.LicenseLink{
			Name: token,
			URL:  SPDXLicenseURL(token),
		})
	}
	return set
}

// DecodeUnmapped builds a link set from unmapped license entries of the form
// "<source>|<name>|<url>[|...]". Entries with too few fields still produce a
// link with the missing parts left empty; each of them is reported in the
// returned error, which joins one *UnmappedEntryError per bad entry.
func DecodeUnmapped(entries []string) (model.LicenseLinkSet, error) {
	set := model.LicenseLinkSet{
		Original:  model.UnmappedMarker,
		Extracted: make([]model.LicenseLink, 0, len(entries)),
	}

	var errs []error
	for i, entry := range entries {
		fields := strings.Split(entry, "|")
		if len(fields) < 3 {
			errs = append(errs, &UnmappedEntryError{Index: i, Entry: entry})
		}
		set.Extracted = append(set.Extracted, model.LicenseLink{
			Name: field(fields, 1),
			URL:  field(fields, 2),
		})
	}
	return set, errors.Join(errs...)
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

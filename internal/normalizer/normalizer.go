// Package normalizer turns the raw value of each top-level report key into the
// flat records the HTML report is rendered from.
package normalizer

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/StinkyLord/ort-html-report/internal/license"
	"github.com/StinkyLord/ort-html-report/internal/model"
)

var (
	// ErrMissingResult is returned when the analyzer has no result object.
	ErrMissingResult = errors.New("analyzer result is missing")
	// ErrMalformedInput is returned when a value required for rendering has
	// the wrong JSON type.
	ErrMalformedInput = errors.New("malformed input")
)

// decodeOptions accept what RFC 8259 allows and the report producer may
// emit: repeated member names (the last one wins) and strings that are not
// valid UTF-8.
var decodeOptions = json.JoinOptions(
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
)

// Normalizer is implemented by the handler of one top-level key.
//
// Normalize decodes raw right away and finishes its work in the background.
// The returned channel receives exactly one value, nil or the error that
// stopped normalization, and is then closed. The store is only written
// before that value is sent.
type Normalizer interface {
	Key() string
	Normalize(raw jsontext.Value, store *model.Store) <-chan error
}

// Defaults returns the normalizers for every known top-level key.
func Defaults() []Normalizer {
	return []Normalizer{
		Repository{},
		Analyzer{},
		Scanner{},
	}
}

// Keys returns the key of every normalizer in ns, in order.
func Keys(ns ...Normalizer) []string {
	keys := make([]string, 0, len(ns))
	for _, n := range ns {
		keys = append(keys, n.Key())
	}
	return keys
}

// deferred runs fn on its own goroutine and reports its result.
func deferred(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- fn()
	}()
	return done
}

// failed reports err without starting any work.
func failed(err error) <-chan error {
	done := make(chan error, 1)
	done <- err
	close(done)
	return done
}

// decodeRecord decodes a JSON object. null decodes to an empty record.
func decodeRecord(key string, raw jsontext.Value) (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(raw, &rec, decodeOptions); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", key, ErrMalformedInput, err)
	}
	if rec == nil {
		rec = model.Record{}
	}
	return rec, nil
}

func omit(rec model.Record, fields ...string) model.Record {
	out := maps.Clone(rec)
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// decodeLicenses replaces the license fields of rec with decoded link sets.
func decodeLicenses(rec model.Record) {
	for _, field := range []string{"spdx_expression", "dlp_spdx_expression"} {
		if expr, ok := rec[field].(string); ok && expr != "" {
			rec[field] = license.DecodeSPDXExpression(expr)
		}
	}

	raw, ok := rec["dlp_unmapped"].([]any)
	if !ok || len(raw) == 0 {
		return
	}
	entries := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			entries = append(entries, s)
			continue
		}
		entries = append(entries, fmt.Sprint(e))
	}
	set, err := license.DecodeUnmapped(entries)
	if err != nil {
		slog.Warn("Unmapped license entries are incomplete", "id", rec.String("id"), "error", err)
	}
	rec["dlp_unmapped"] = set
}

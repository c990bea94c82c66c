package normalizer

import (
	"fmt"
	"maps"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/ubuntu/decorate"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// Analyzer normalizes the "analyzer" key into projects and packages.
type Analyzer struct{}

func (Analyzer) Key() string { return model.KeyAnalyzer }

func (a Analyzer) Normalize(raw jsontext.Value, store *model.Store) <-chan error {
	rec, err := decodeRecord(a.Key(), raw)
	if err != nil {
		return failed(err)
	}
	return deferred(func() error {
		report, err := NormalizeAnalyzer(rec)
		if err != nil {
			return err
		}
		return store.SetAnalyzer(report)
	})
}

// NormalizeAnalyzer drops the run metadata of the analyzer and normalizes
// every project and package of its result. A missing result is an error:
// there is nothing to report without it.
func NormalizeAnalyzer(rec model.Record) (report *model.AnalyzerReport, err error) {
	defer decorate.OnError(&err, "cannot normalize analyzer")

	meta := omit(rec, "start_time", "end_time", "environment", "config")
	result, ok := meta["result"].(map[string]any)
	if !ok {
		return nil, ErrMissingResult
	}
	delete(meta, "result")

	projects, err := normalizeList(result, "projects", NormalizeProject)
	if err != nil {
		return nil, err
	}
	packages, err := normalizeList(result, "packages", NormalizePackage)
	if err != nil {
		return nil, err
	}

	return &model.AnalyzerReport{
		Projects: projects,
		Packages: packages,
		Meta:     meta,
	}, nil
}

// NormalizeProject normalizes one entry of result.projects.
func NormalizeProject(rec model.Record) model.Record {
	out := omit(rec, "definition_file_path", "declared_licenses", "scopes", "binary_artifact", "source_artifact")
	flattenInto(out, "vcs", "v")
	flattenInto(out, "vcs_processed", "vp")
	flattenInto(out, "declared_licenses_processed", "dlp")
	decodeLicenses(out)
	return out
}

// NormalizePackage normalizes one entry of result.packages. The wrapped
// "package" object is merged into the entry itself; its fields win over the
// wrapper's.
func NormalizePackage(rec model.Record) model.Record {
	out := omit(rec, "curations", "package")
	if inner, ok := rec["package"].(map[string]any); ok {
		maps.Copy(out, inner)
	}
	flattenInto(out, "vcs", "v")
	flattenInto(out, "vcs_processed", "vp")
	flattenInto(out, "declared_licenses_processed", "dlp")
	flattenInto(out, "binary_artifact", "ba")
	flattenInto(out, "source_artifact", "sa")
	decodeLicenses(out)
	return out
}

func normalizeList(result map[string]any, field string, normalize func(model.Record) model.Record) ([]model.Record, error) {
	v, ok := result[field]
	if !ok || v == nil {
		return []model.Record{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("result.%s: %w: expected a list, got %T", field, ErrMalformedInput, v)
	}

	out := make([]model.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("result.%s[%d]: %w: expected an object, got %T", field, i, ErrMalformedInput, item)
		}
		out = append(out, normalize(obj))
	}
	return out, nil
}

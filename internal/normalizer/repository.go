package normalizer

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// Repository normalizes the "repository" key.
type Repository struct{}

func (Repository) Key() string { return model.KeyRepository }

func (r Repository) Normalize(raw jsontext.Value, store *model.Store) <-chan error {
	rec, err := decodeRecord(r.Key(), raw)
	if err != nil {
		return failed(err)
	}
	return deferred(func() error {
		return store.SetRepository(NormalizeRepository(rec))
	})
}

// NormalizeRepository flattens vcs_processed under "vp", so the processed
// repository URL becomes vp_url.
func NormalizeRepository(rec model.Record) model.Record {
	out := omit(rec)
	if out == nil {
		out = model.Record{}
	}
	flattenInto(out, "vcs_processed", "vp")
	return out
}

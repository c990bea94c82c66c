package normalizer

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// Scanner handles the "scanner" key. The report does not render scan results
// yet, so the value is stored exactly as decoded.
type Scanner struct{}

func (Scanner) Key() string { return model.KeyScanner }

func (s Scanner) Normalize(raw jsontext.Value, store *model.Store) <-chan error {
	var v any
	if err := json.Unmarshal(raw, &v, decodeOptions); err != nil {
		return failed(fmt.Errorf("%s: %w: %w", s.Key(), ErrMalformedInput, err))
	}
	return deferred(func() error {
		return store.SetScanner(v)
	})
}

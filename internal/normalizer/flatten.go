package normalizer

import (
	"maps"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// Flatten returns a copy of obj where every key is renamed prefix + "_" + key.
// A nil obj is returned as is. obj itself is left untouched.
func Flatten(prefix string, obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	flat := make(map[string]any, len(obj))
	for k, v := range obj {
		flat[prefix+"_"+k] = v
	}
	return flat
}

// flattenInto removes the nested object rec[field] and merges its fields into
// rec under prefix. Flattened fields overwrite siblings of the same name.
// A field that is not an object (null included) is simply removed.
func flattenInto(rec model.Record, field, prefix string) {
	v, ok := rec[field]
	if !ok {
		return
	}
	delete(rec, field)

	obj, _ := v.(map[string]any)
	maps.Copy(rec, Flatten(prefix, obj))
}

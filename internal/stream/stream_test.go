package stream_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/ort-html-report/internal/stream"
)

// readAll drains r and returns every member it produced.
func readAll(t *testing.T, r *stream.Reader) ([]stream.KeyValue, error) {
	t.Helper()

	var got []stream.KeyValue
	for {
		kv, err := r.Next()
		if err == io.EOF {
			return got, nil
		}
		if err != nil {
			return got, err
		}
		got = append(got, kv)
	}
}

func TestReaderYieldsMembersInOrder(t *testing.T) {
	t.Parallel()

	input := `{
		"scanner": {"results": []},
		"repository": {"vcs_processed": {"url": "git://x"}},
		"analyzer": {"result": {"projects": [{"id": "a"}], "packages": []}}
	}`

	got, err := readAll(t, stream.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "scanner", got[0].Key)
	assert.Equal(t, "repository", got[1].Key)
	assert.Equal(t, "analyzer", got[2].Key)
	assert.JSONEq(t, `{"vcs_processed": {"url": "git://x"}}`, string(got[1].Value))
	assert.JSONEq(t, `{"result": {"projects": [{"id": "a"}], "packages": []}}`, string(got[2].Value))
}

func TestReaderValuesSurviveLaterReads(t *testing.T) {
	t.Parallel()

	r := stream.NewReader(strings.NewReader(`{"a": "first", "b": "second"}`))

	first, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	require.NoError(t, err)

	assert.Equal(t, `"first"`, string(first.Value), "Value must not alias the decoder buffer")
}

func TestReaderWithKeysSkipsOtherValues(t *testing.T) {
	t.Parallel()

	input := `{"unknown": {"huge": [1, 2, 3]}, "repository": {}}`

	got, err := readAll(t, stream.NewReader(strings.NewReader(input), stream.WithKeys("repository")))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "unknown", got[0].Key)
	assert.Nil(t, got[0].Value, "Skipped members carry no value")
	assert.Equal(t, "repository", got[1].Key)
	assert.Equal(t, `{}`, string(got[1].Value))
}

func TestReaderEmptyObject(t *testing.T) {
	t.Parallel()

	r := stream.NewReader(strings.NewReader(" {}\n"))
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF, "Reader stays at EOF")
}

func TestReaderKeepsNestedDuplicatesAndInvalidUTF8(t *testing.T) {
	t.Parallel()

	input := "{\"analyzer\": {\"id\": \"a\", \"id\": \"b\", \"name\": \"\xff\"}}"

	got, err := readAll(t, stream.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "analyzer", got[0].Key)
	assert.Contains(t, string(got[0].Value), `"id": "b"`)
}

func TestReaderStopsAfterRejectedRoot(t *testing.T) {
	t.Parallel()

	r := stream.NewReader(strings.NewReader(`["a", "b"] {"repository": {}}`))

	_, err := r.Next()
	require.ErrorIs(t, err, stream.ErrNotObject)

	kv, err := r.Next()
	require.ErrorIs(t, err, io.EOF, "Nothing is read past a rejected root")
	assert.Empty(t, kv.Key)
}

func TestReaderErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string

		wantErr error
	}{
		"Empty input":            {input: "", wantErr: stream.ErrMalformedJSON},
		"Root is an array":       {input: `[1, 2]`, wantErr: stream.ErrNotObject},
		"Root is a string":       {input: `"repository"`, wantErr: stream.ErrNotObject},
		"Truncated document":     {input: `{"repository": {"vcs`, wantErr: stream.ErrMalformedJSON},
		"Missing closing":        {input: `{"repository": {}`, wantErr: stream.ErrMalformedJSON},
		"Trailing value":         {input: `{} {}`, wantErr: stream.ErrMalformedJSON},
		"Trailing garbage":       {input: `{}x`, wantErr: stream.ErrMalformedJSON},
		"Duplicate member":       {input: `{"a": 1, "a": 2}`, wantErr: stream.ErrMalformedJSON},
		"Duplicate later member": {input: `{"a": 1, "b": 2, "a": 3}`, wantErr: stream.ErrMalformedJSON},
		"Invalid member value":   {input: `{"a": tru}`, wantErr: stream.ErrMalformedJSON},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := readAll(t, stream.NewReader(strings.NewReader(tc.input)))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

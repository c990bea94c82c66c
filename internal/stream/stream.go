// Package stream reads the members of a root JSON object one at a time
// without loading the whole document into memory.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

var (
	// ErrMalformedJSON is returned for any syntax error in the input.
	ErrMalformedJSON = errors.New("malformed JSON")
	// ErrNotObject is returned when the document root is not a JSON object.
	ErrNotObject = errors.New("root value is not a JSON object")
)

// KeyValue is one member of the root object.
type KeyValue struct {
	Key string
	// Value holds the raw JSON of the member. It is nil for members that
	// were skipped because their key was not requested.
	Value jsontext.Value
}

// Option configures a Reader.
type Option func(*Reader)

// WithKeys restricts the members whose value is read into memory. Members
// with other keys are still reported, with a nil Value, but their content is
// skipped as it streams by.
func WithKeys(keys ...string) Option {
	return func(r *Reader) {
		r.keys = make(map[string]bool, len(keys))
		for _, k := range keys {
			r.keys[k] = true
		}
	}
}

// Reader yields the members of a root JSON object in document order.
// Only the value currently being returned is held in memory.
type Reader struct {
	dec  *jsontext.Decoder
	keys map[string]bool
	seen map[string]bool

	started bool
	done    bool
}

// NewReader returns a Reader consuming r.
//
// Member values are taken as they are: repeated names and invalid UTF-8
// inside a value are left for the consumer to handle. Names of the root
// object itself must be unique.
func NewReader(r io.Reader, opts ...Option) *Reader {
	rd := &Reader{
		dec:  jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true), jsontext.AllowInvalidUTF8(true)),
		seen: map[string]bool{},
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Next returns the next member of the root object, or io.EOF once the closing
// brace has been read and nothing but whitespace follows it.
func (r *Reader) Next() (KeyValue, error) {
	if r.done {
		return KeyValue{}, io.EOF
	}

	if !r.started {
		tok, err := r.dec.ReadToken()
		if err != nil {
			return KeyValue{}, r.syntaxError(err)
		}
		if tok.Kind() != '{' {
			r.done = true
			return KeyValue{}, fmt.Errorf("%w: found %v", ErrNotObject, tok.Kind())
		}
		r.started = true
	}

	tok, err := r.dec.ReadToken()
	if err != nil {
		return KeyValue{}, r.syntaxError(err)
	}
	if tok.Kind() == '}' {
		return KeyValue{}, r.finish()
	}

	key := tok.String()
	if r.seen[key] {
		r.done = true
		return KeyValue{}, fmt.Errorf("%w: duplicate member name %q at offset %d", ErrMalformedJSON, key, r.dec.InputOffset())
	}
	r.seen[key] = true

	if r.keys != nil && !r.keys[key] {
		if err := r.dec.SkipValue(); err != nil {
			return KeyValue{}, r.syntaxError(err)
		}
		return KeyValue{Key: key}, nil
	}

	val, err := r.dec.ReadValue()
	if err != nil {
		return KeyValue{}, r.syntaxError(err)
	}
	// The decoder reuses its buffer on the next read.
	return KeyValue{Key: key, Value: jsontext.Value(bytes.Clone(val))}, nil
}

// finish checks that the root object is the last thing in the input.
func (r *Reader) finish() error {
	r.done = true
	_, err := r.dec.ReadToken()
	switch {
	case errors.Is(err, io.EOF):
		return io.EOF
	case err != nil:
		return r.syntaxError(err)
	default:
		return fmt.Errorf("%w: unexpected data after root object at offset %d", ErrMalformedJSON, r.dec.InputOffset())
	}
}

func (r *Reader) syntaxError(err error) error {
	r.done = true
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
}

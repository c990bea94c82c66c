// Package dispatcher feeds the members of a scan report to their normalizers,
// one at a time, and triggers rendering once the input is exhausted.
package dispatcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/StinkyLord/ort-html-report/internal/model"
	"github.com/StinkyLord/ort-html-report/internal/normalizer"
	"github.com/StinkyLord/ort-html-report/internal/stream"
)

// ErrAlreadyRun is returned when Run is called on a dispatcher that has
// already left the Idle state.
var ErrAlreadyRun = errors.New("dispatcher already ran")

// Source yields the top-level members of a report in document order and
// returns io.EOF when there are none left. *stream.Reader implements it.
type Source interface {
	Next() (stream.KeyValue, error)
}

// State is the lifecycle stage of a Dispatcher.
type State int

const (
	// Idle is the state before the first member is requested.
	Idle State = iota
	// Processing means members are being read and normalized.
	Processing
	// Done means the input is exhausted and every normalizer completed.
	Done
	// Failed means the run was aborted by an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dispatcher routes each member of the source to the normalizer registered
// for its key. Unknown keys are ignored.
type Dispatcher struct {
	source      Source
	store       *model.Store
	normalizers map[string]normalizer.Normalizer

	state State
}

// New creates a Dispatcher writing into store. When several normalizers share
// a key the last one wins.
func New(source Source, store *model.Store, normalizers ...normalizer.Normalizer) *Dispatcher {
	d := &Dispatcher{
		source:      source,
		store:       store,
		normalizers: make(map[string]normalizer.Normalizer, len(normalizers)),
	}
	for _, n := range normalizers {
		d.normalizers[n.Key()] = n
	}
	return d
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return d.state
}

// Run consumes the whole source. The next member is only requested once the
// normalizer of the previous one has signalled completion, so at most one
// normalization is in flight at any time. When the source is exhausted,
// render is called exactly once with the populated store.
//
// Any error aborts the run and render is not called.
func (d *Dispatcher) Run(render func(*model.Store) error) error {
	if d.state != Idle {
		return ErrAlreadyRun
	}
	d.state = Processing

	if err := d.consume(); err != nil {
		d.state = Failed
		return err
	}
	d.state = Done

	if render == nil {
		return nil
	}
	return render(d.store)
}

func (d *Dispatcher) consume() error {
	for {
		kv, err := d.source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}

		n, ok := d.normalizers[kv.Key]
		if !ok {
			slog.Debug("Ignoring unknown key", "key", kv.Key)
			continue
		}

		slog.Info("Processing key", "key", kv.Key)
		if err := <-n.Normalize(kv.Value, d.store); err != nil {
			return fmt.Errorf("%s: %w", kv.Key, err)
		}
	}
}

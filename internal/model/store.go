package model

import (
	"errors"
	"fmt"
)

// Top-level keys of a scan report.
const (
	KeyRepository = "repository"
	KeyAnalyzer   = "analyzer"
	KeyScanner    = "scanner"
)

// ErrAlreadyWritten is returned when a store slot is written a second time.
var ErrAlreadyWritten = errors.New("record already written")

// AnalyzerReport holds the analyzer result, one normalized record per
// project and per package in input order.
type AnalyzerReport struct {
	Projects []Record
	Packages []Record

	// Meta keeps the analyzer fields that survive normalization apart from
	// the result itself (e.g. "has_issues").
	Meta Record
}

// Store collects the normalized records of one conversion run. Each slot is
// written at most once while the stream is consumed and read once by the
// renderer afterwards.
type Store struct {
	Repository Record
	Analyzer   *AnalyzerReport

	// Scanner is the scanner value exactly as decoded from the input.
	Scanner any

	written map[string]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{written: map[string]bool{}}
}

// Has reports whether the slot for a top-level key has been written.
func (s *Store) Has(key string) bool {
	return s.written[key]
}

// SetRepository stores the normalized repository record.
func (s *Store) SetRepository(r Record) error {
	if err := s.claim(KeyRepository); err != nil {
		return err
	}
	s.Repository = r
	return nil
}

// SetAnalyzer stores the normalized analyzer report.
func (s *Store) SetAnalyzer(a *AnalyzerReport) error {
	if err := s.claim(KeyAnalyzer); err != nil {
		return err
	}
	s.Analyzer = a
	return nil
}

// SetScanner stores the scanner value.
func (s *Store) SetScanner(v any) error {
	if err := s.claim(KeyScanner); err != nil {
		return err
	}
	s.Scanner = v
	return nil
}

func (s *Store) claim(key string) error {
	if s.written == nil {
		s.written = map[string]bool{}
	}
	if s.written[key] {
		return fmt.Errorf("%s: %w", key, ErrAlreadyWritten)
	}
	s.written[key] = true
	return nil
}

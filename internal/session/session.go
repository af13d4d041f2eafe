// Package session owns the expensive one-time work of a dashboard session —
// dataset load and model resolution — and exposes the synchronous read API
// the presentation layer consumes.
//
// State machine: Uninitialized → DatasetLoaded → ModelResolved → Ready.
// A fatal dataset failure lands in Failed (nothing renders); a model
// resolution failure lands in Degraded (dataset browsing only, no
// prediction-dependent views).
//
// Dataset and model are immutable after Open, so one Session may serve
// concurrent readers without locking. Per-user selection state (country,
// comparison list) belongs to the caller, not here.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
	"github.com/MikeMitch88/carbon-tracker/internal/modelstore"
	"github.com/MikeMitch88/carbon-tracker/internal/settings"
)

// State is the session lifecycle stage.
type State int

const (
	Uninitialized State = iota
	DatasetLoaded
	ModelResolved
	Ready
	Degraded // dataset available, model is not
	Failed   // no dataset; nothing can render
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case DatasetLoaded:
		return "dataset-loaded"
	case ModelResolved:
		return "model-resolved"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the explicit context holding the cached dataset and resolved
// model for one process lifetime.
type Session struct {
	ID       string
	State    State
	Settings settings.Settings
	Warnings []string

	// Err is the fatal error when State is Failed, or the model error when
	// Degraded.
	Err error

	ds     *dataset.Dataset
	engine *metrics.Engine
}

// Open loads the dataset and resolves the model exactly once, returning the
// session in its terminal state. It never returns nil: callers branch on
// State.
func Open(cfg settings.Settings) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		State:    Uninitialized,
		Settings: cfg,
	}

	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		s.State = Failed
		s.Err = err
		return s
	}
	s.ds = ds
	s.State = DatasetLoaded
	if ds.SkippedRows > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("skipped %d malformed dataset rows", ds.SkippedRows))
	}
	if ds.ReplacedRows > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("overwrote %d duplicate (country, year) rows", ds.ReplacedRows))
	}

	res, err := modelstore.Resolve(cfg.ModelPath, ds)
	if err != nil {
		// Prediction views are unavailable, but the dataset still browses.
		s.State = Degraded
		s.Err = err
		s.engine = metrics.NewEngine(ds, nil, cfg.MetricsConfig())
		return s
	}
	s.State = ModelResolved
	s.Warnings = append(s.Warnings, res.Warnings...)
	if res.Rebuilt {
		s.Warnings = append(s.Warnings, "prediction model was rebuilt from the dataset")
	}

	s.engine = metrics.NewEngine(ds, res.Model, cfg.MetricsConfig())
	s.State = Ready
	return s
}

// CanBrowse reports whether dataset views may render.
func (s *Session) CanBrowse() bool {
	return s.State == Ready || s.State == Degraded
}

// CanPredict reports whether prediction-dependent views may render.
func (s *Session) CanPredict() bool {
	return s.State == Ready
}

// Dataset exposes the immutable dataset; nil when Failed.
func (s *Session) Dataset() *dataset.Dataset { return s.ds }

// Countries returns the sorted country list; empty when Failed.
func (s *Session) Countries() []string {
	if s.ds == nil {
		return nil
	}
	return s.ds.Countries()
}

// SeriesFor returns country's records ascending by year; empty when unknown
// or Failed.
func (s *Session) SeriesFor(country string) []dataset.Record {
	if s.ds == nil {
		return nil
	}
	return s.ds.SeriesFor(country)
}

// Metrics computes the full snapshot for one selection.
func (s *Session) Metrics(country string, year int) (*metrics.Snapshot, error) {
	if s.engine == nil {
		return nil, s.Err
	}
	return s.engine.Snapshot(country, year)
}

// Comparison returns the latest observation per requested country.
func (s *Session) Comparison(countries []string) []metrics.ComparisonRow {
	if s.engine == nil {
		return nil
	}
	return s.engine.ComparisonSnapshot(countries)
}

// Engine exposes the metrics engine for chart and report generation; nil when
// Failed.
func (s *Session) Engine() *metrics.Engine { return s.engine }

// Package pipeline fits, serializes and serves the emissions prediction
// model: a one-hot country + standardized year feature transform feeding a
// bagged regression forest.
//
// The fitted pipeline is persisted with encoding/gob; FormatVersion guards
// against loading an artifact written by an incompatible revision.
package pipeline

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
)

// ErrTraining marks a dataset the builder cannot fit: empty, a single row, or
// a non-finite target value.
var ErrTraining = errors.New("model training failed")

// FormatVersion identifies the artifact layout. Bump on any change to the
// persisted types; Resolve treats a mismatch like any other stale artifact.
const FormatVersion = 1

// Fixed hyperparameters. The seed pins bootstrap resampling so that two
// builds over the identical dataset produce identical predictions.
const (
	numTrees   = 100
	randomSeed = 42
	maxDepth   = 12
	minLeaf    = 2
)

// Pipeline is the fitted prediction artifact: encoder + forest plus training
// provenance. Immutable once fitted; safe for concurrent Predict calls.
type Pipeline struct {
	Version   int
	Encoder   *Encoder
	Forest    *Forest
	TrainedAt time.Time
	TrainRows int
}

// Build fits a fresh pipeline against the full dataset.
func Build(ds *dataset.Dataset) (*Pipeline, error) {
	records := ds.Records()
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, have %d", ErrTraining, len(records))
	}

	countries := make([]string, len(records))
	years := make([]int, len(records))
	y := make([]float64, len(records))
	for i, rec := range records {
		if math.IsNaN(rec.PerCapitaCO2Kg) || math.IsInf(rec.PerCapitaCO2Kg, 0) {
			return nil, fmt.Errorf("%w: non-finite target for %s/%d", ErrTraining, rec.Country, rec.Year)
		}
		countries[i] = rec.Country
		years[i] = rec.Year
		y[i] = rec.PerCapitaCO2Kg
	}

	enc, err := FitEncoder(countries, years)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraining, err)
	}

	X := make([][]float64, len(records))
	for i := range records {
		X[i] = enc.Transform(countries[i], years[i])
	}

	forest := &Forest{NumTrees: numTrees, MaxDepth: maxDepth, MinLeaf: minLeaf, Seed: randomSeed}
	if err := forest.Fit(X, y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraining, err)
	}

	return &Pipeline{
		Version:   FormatVersion,
		Encoder:   enc,
		Forest:    forest,
		TrainedAt: time.Now().UTC(),
		TrainRows: len(records),
	}, nil
}

// Predict returns the modeled per-capita emissions for (country, year).
// Unknown countries encode to the all-zero block and still yield a value.
func (p *Pipeline) Predict(country string, year int) (float64, error) {
	if p == nil || p.Encoder == nil || p.Forest == nil {
		return 0, fmt.Errorf("predict: pipeline not fitted")
	}
	v, err := p.Forest.Predict(p.Encoder.Transform(country, year))
	if err != nil {
		return 0, fmt.Errorf("predict %s/%d: %w", country, year, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("predict %s/%d: non-finite result", country, year)
	}
	return v, nil
}

// Save writes the fitted pipeline to path.
func (p *Pipeline) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// LoadFile reads a previously saved pipeline from path.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var p Pipeline
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if p.Version != FormatVersion {
		return nil, fmt.Errorf("model %s: format version %d, want %d", path, p.Version, FormatVersion)
	}
	return &p, nil
}

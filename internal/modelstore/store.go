// Package modelstore resolves the session's prediction model: load the
// persisted artifact, smoke-test it against the dataset's domain, and rebuild
// from scratch when the artifact is absent or unusable.
//
// The rebuild-on-incompatible-load path is a lazy self-healing cache: a stale
// or corrupt artifact is replaced by a freshly fitted one, persisted back to
// the same path, and the incident is surfaced only as a warning.
package modelstore

import (
	"errors"
	"fmt"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/pipeline"
)

// ErrModelUnavailable means no artifact could be loaded and none could be
// built. Fatal for prediction-dependent views; dataset browsing may continue.
var ErrModelUnavailable = errors.New("no usable prediction model")

// Resolution is the outcome of Resolve: the model to use for the rest of the
// session, plus provenance and any non-fatal warnings for the UI.
type Resolution struct {
	Model    *pipeline.Pipeline
	Rebuilt  bool
	Warnings []string
}

// Resolve returns a working model for the session. The caller caches the
// result; Resolve runs at most once per session.
func Resolve(modelPath string, ds *dataset.Dataset) (*Resolution, error) {
	res := &Resolution{}

	model, err := pipeline.LoadFile(modelPath)
	if err == nil {
		if smokeErr := smokeTest(model, ds); smokeErr == nil {
			res.Model = model
			return res, nil
		} else {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("saved model failed its smoke test (%v); rebuilding", smokeErr))
		}
	} else {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("could not load saved model (%v); rebuilding", err))
	}

	rebuilt, err := pipeline.Build(ds)
	if err != nil {
		return nil, fmt.Errorf("%w: rebuild: %v", ErrModelUnavailable, err)
	}
	if smokeErr := smokeTest(rebuilt, ds); smokeErr != nil {
		return nil, fmt.Errorf("%w: rebuilt model failed smoke test: %v", ErrModelUnavailable, smokeErr)
	}

	res.Model = rebuilt
	res.Rebuilt = true

	// Persisting the rebuilt artifact is best-effort: the in-memory model
	// serves the session either way.
	if err := rebuilt.Save(modelPath); err != nil {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("could not persist rebuilt model: %v", err))
	}
	return res, nil
}

// smokeTest invokes one prediction on an input known to be inside the
// dataset's domain. Any error means the model cannot be trusted for real
// requests.
func smokeTest(model *pipeline.Pipeline, ds *dataset.Dataset) error {
	countries := ds.Countries()
	if len(countries) == 0 {
		return fmt.Errorf("dataset has no countries to probe with")
	}
	_, err := model.Predict(countries[0], ds.LatestYear())
	return err
}

package metrics

import (
	"fmt"

	"github.com/sajari/regression"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
)

// Trend is a least-squares line fitted to a country's series. Shown alongside
// the forest prediction so a user can compare the model against the naive
// extrapolation.
type Trend struct {
	AnnualChangeKg float64 // slope: kg CO₂ per capita per year
	fit            *regression.Regression
}

// FitTrend fits value ~ year over the series. Needs at least two points.
func FitTrend(series []dataset.Record) (*Trend, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("trend: need at least 2 records, have %d", len(series))
	}

	r := new(regression.Regression)
	r.SetObserved("per-capita CO2 (kg)")
	r.SetVar(0, "year")
	for _, rec := range series {
		r.Train(regression.DataPoint(rec.PerCapitaCO2Kg, []float64{float64(rec.Year)}))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}

	return &Trend{AnnualChangeKg: r.Coeff(1), fit: r}, nil
}

// ProjectFor extrapolates the fitted line to year.
func (t *Trend) ProjectFor(year int) (float64, error) {
	v, err := t.fit.Predict([]float64{float64(year)})
	if err != nil {
		return 0, fmt.Errorf("trend projection: %w", err)
	}
	return v, nil
}

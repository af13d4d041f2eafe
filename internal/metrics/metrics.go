// Package metrics computes everything the dashboard displays for a selected
// country and analysis year: current/predicted emissions, global averages,
// historical peak, reduction targets, comparison rows and climate tips.
//
// All computations are synchronous pure reads over the immutable dataset and
// resolved model, so an Engine is safe to share across concurrent sessions.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
)

// ErrNoSeries means the selected country has no records at all.
var ErrNoSeries = errors.New("no emissions records for country")

// DefaultFallbackEmissions is the documented global-average approximation
// returned when a prediction call fails. A heuristic constant, configurable
// via settings.
const DefaultFallbackEmissions = 5000.0

// Default reduction-target fractions of the current value. Illustrative
// policy-free heuristics, configurable via settings.
const (
	DefaultNearTermFraction = 0.5
	DefaultMidTermFraction  = 0.3
	DefaultLongTermFraction = 0.1
)

// Predictor is the model surface the engine consumes. A nil Predictor puts
// the engine in degraded mode: every out-of-dataset request yields the
// fallback constant.
type Predictor interface {
	Predict(country string, year int) (float64, error)
}

// Config carries the tunable heuristics.
type Config struct {
	FallbackEmissions float64
	NearTermFraction  float64
	MidTermFraction   float64
	LongTermFraction  float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		FallbackEmissions: DefaultFallbackEmissions,
		NearTermFraction:  DefaultNearTermFraction,
		MidTermFraction:   DefaultMidTermFraction,
		LongTermFraction:  DefaultLongTermFraction,
	}
}

// Engine answers metric queries against one dataset + model pair.
type Engine struct {
	ds    *dataset.Dataset
	model Predictor
	cfg   Config
}

// NewEngine builds an engine. model may be nil (degraded mode).
func NewEngine(ds *dataset.Dataset, model Predictor, cfg Config) *Engine {
	return &Engine{ds: ds, model: model, cfg: cfg}
}

// Target is one reduction milestone.
type Target struct {
	Label string
	Value float64
}

// YearValue is one point of a per-year aggregate series.
type YearValue struct {
	Year  int
	Value float64
}

// ComparisonRow is one country's latest observation.
type ComparisonRow struct {
	Country     string
	LatestYear  int
	LatestValue float64
}

// Snapshot is the full derived view for one (country, year) selection.
// Ephemeral: recomputed per interaction, never persisted.
type Snapshot struct {
	Country        string
	Year           int
	Current        float64
	Predicted      bool // value came from the model (or fallback), not the dataset
	GlobalAverage  float64
	RatioToAverage float64
	PeakValue      float64
	PeakYear       int
	Targets        []Target
	Trend          *Trend // nil when the series is too short to fit
	Tips           []string
}

// CurrentEmissions returns the per-capita value for (country, year). An exact
// dataset match wins over any prediction; a failed or unavailable prediction
// yields the configured fallback constant. Never errors.
func (e *Engine) CurrentEmissions(country string, year int) (value float64, predicted bool) {
	if v, ok := e.ds.Lookup(country, year); ok {
		return v, false
	}
	if e.model == nil {
		return e.cfg.FallbackEmissions, true
	}
	v, err := e.model.Predict(country, year)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return e.cfg.FallbackEmissions, true
	}
	return v, true
}

// GlobalAverage is the unweighted mean of per-capita values over all records.
func (e *Engine) GlobalAverage() float64 {
	records := e.ds.Records()
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range records {
		sum += rec.PerCapitaCO2Kg
	}
	return sum / float64(len(records))
}

// GlobalAverageByYear is the per-year mean series, ascending by year. Feeds
// the dashed global-average line on the trend chart.
func (e *Engine) GlobalAverageByYear() []YearValue {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, rec := range e.ds.Records() {
		sums[rec.Year] += rec.PerCapitaCO2Kg
		counts[rec.Year]++
	}
	out := make([]YearValue, 0, len(sums))
	for year, sum := range sums {
		out = append(out, YearValue{Year: year, Value: sum / float64(counts[year])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// HistoricalPeak finds the maximum per-capita value in series and its year.
// ok is false for an empty series; callers must guard.
func HistoricalPeak(series []dataset.Record) (value float64, year int, ok bool) {
	for _, rec := range series {
		if !ok || rec.PerCapitaCO2Kg > value {
			value = rec.PerCapitaCO2Kg
			year = rec.Year
			ok = true
		}
	}
	return value, year, ok
}

// ReductionTargets maps milestone labels to fixed fractions of current.
// Ordered near-term first so charts read left to right.
func (e *Engine) ReductionTargets(current float64) []Target {
	return []Target{
		{Label: "2030 (SDG Target)", Value: current * e.cfg.NearTermFraction},
		{Label: "2040", Value: current * e.cfg.MidTermFraction},
		{Label: "2050 (Net Zero)", Value: current * e.cfg.LongTermFraction},
	}
}

// ComparisonSnapshot returns each requested country's most recent observation,
// sorted descending by value. Countries with no records are silently skipped.
func (e *Engine) ComparisonSnapshot(countries []string) []ComparisonRow {
	seen := make(map[string]struct{}, len(countries))
	rows := make([]ComparisonRow, 0, len(countries))
	for _, country := range countries {
		if _, dup := seen[country]; dup {
			continue
		}
		seen[country] = struct{}{}
		series := e.ds.SeriesFor(country)
		if len(series) == 0 {
			continue
		}
		latest := series[len(series)-1]
		rows = append(rows, ComparisonRow{
			Country:     country,
			LatestYear:  latest.Year,
			LatestValue: latest.PerCapitaCO2Kg,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].LatestValue > rows[j].LatestValue })
	return rows
}

// Snapshot computes the full derived view for one selection.
func (e *Engine) Snapshot(country string, year int) (*Snapshot, error) {
	series := e.ds.SeriesFor(country)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSeries, country)
	}

	current, predicted := e.CurrentEmissions(country, year)
	avg := e.GlobalAverage()

	snap := &Snapshot{
		Country:       country,
		Year:          year,
		Current:       current,
		Predicted:     predicted,
		GlobalAverage: avg,
		Targets:       e.ReductionTargets(current),
		Tips:          Tips(country, current, avg),
	}
	if avg != 0 {
		snap.RatioToAverage = current / avg
	}
	snap.PeakValue, snap.PeakYear, _ = HistoricalPeak(series)

	if trend, err := FitTrend(series); err == nil {
		snap.Trend = trend
	}
	return snap, nil
}

package pipeline

import (
	"fmt"
	"math"
	"sort"
)

// Encoder maps a (country, year) input to the numeric feature vector the
// forest trains on: a one-hot country block followed by a standardized year.
//
// A country unseen at fit time encodes as an all-zero block rather than an
// error, matching the contract that prediction must accept any country name.
// All exported fields are part of the persisted artifact.
type Encoder struct {
	Categories []string // sorted country vocabulary from the training set
	YearMean   float64
	YearStd    float64
}

// FitEncoder builds an Encoder from the training inputs.
func FitEncoder(countries []string, years []int) (*Encoder, error) {
	if len(countries) == 0 || len(countries) != len(years) {
		return nil, fmt.Errorf("encoder: %d countries vs %d years", len(countries), len(years))
	}

	uniq := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		uniq[c] = struct{}{}
	}
	cats := make([]string, 0, len(uniq))
	for c := range uniq {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var mean float64
	for _, y := range years {
		mean += float64(y)
	}
	mean /= float64(len(years))

	var variance float64
	for _, y := range years {
		d := float64(y) - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(years)))
	if std == 0 {
		// Single-year dataset: standardized year carries no signal, but the
		// transform must stay defined.
		std = 1
	}

	return &Encoder{Categories: cats, YearMean: mean, YearStd: std}, nil
}

// Width is the length of the produced feature vector.
func (e *Encoder) Width() int { return len(e.Categories) + 1 }

// Transform encodes one (country, year) input.
func (e *Encoder) Transform(country string, year int) []float64 {
	x := make([]float64, e.Width())
	i := sort.SearchStrings(e.Categories, country)
	if i < len(e.Categories) && e.Categories[i] == country {
		x[i] = 1
	}
	x[len(x)-1] = (float64(year) - e.YearMean) / e.YearStd
	return x
}

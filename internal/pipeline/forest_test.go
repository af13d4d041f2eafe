package pipeline

import (
	"math"
	"testing"
)

func newTestForest() *Forest {
	return &Forest{NumTrees: 25, MaxDepth: 6, MinLeaf: 2, Seed: 7}
}

func TestForestConstantTarget(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{5, 5, 5, 5}

	f := newTestForest()
	if err := f.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got, err := f.Predict([]float64{1.5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 5 {
		t.Errorf("Predict on constant target = %v, want 5", got)
	}
}

func TestForestSeparatesGroups(t *testing.T) {
	// Feature 0 is a binary indicator cleanly splitting low from high targets.
	var X [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		X = append(X, []float64{0, float64(i)})
		y = append(y, 100+float64(i))
		X = append(X, []float64{1, float64(i)})
		y = append(y, 1000+float64(i))
	}

	f := newTestForest()
	if err := f.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	low, err := f.Predict([]float64{0, 5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	high, err := f.Predict([]float64{1, 5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if low > 200 || high < 900 {
		t.Errorf("Predict = (%v, %v), want clean separation around 100 vs 1000", low, high)
	}
}

func TestForestDeterministicAcrossFits(t *testing.T) {
	X := [][]float64{{0, 1}, {0, 2}, {1, 1}, {1, 2}, {0, 3}, {1, 3}}
	y := []float64{10, 12, 50, 52, 14, 54}

	f1 := newTestForest()
	f2 := newTestForest()
	if err := f1.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if err := f2.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	probes := [][]float64{{0, 1.5}, {1, 2.5}, {0.5, 2}, {1, 9}}
	for _, probe := range probes {
		v1, _ := f1.Predict(probe)
		v2, _ := f2.Predict(probe)
		if v1 != v2 {
			t.Errorf("Predict(%v) differs across identical fits: %v vs %v", probe, v1, v2)
		}
		if math.IsNaN(v1) {
			t.Errorf("Predict(%v) = NaN", probe)
		}
	}
}

func TestForestUnfitted(t *testing.T) {
	f := newTestForest()
	if _, err := f.Predict([]float64{0}); err == nil {
		t.Fatal("Predict before Fit should error")
	}
}

func TestForestMismatchedInput(t *testing.T) {
	f := newTestForest()
	if err := f.Fit([][]float64{{1}}, []float64{1, 2}); err == nil {
		t.Fatal("Fit with mismatched rows/targets should error")
	}
}

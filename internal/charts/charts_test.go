package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
)

func loadDataset(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	return ds
}

const chartCSV = `Country,Year,Per_Capita_CO2_kg
Kenya,2017,300.0
Kenya,2018,305.0
Kenya,2019,310.0
Germany,2017,8800.0
Germany,2018,8600.0
Germany,2019,8400.0
`

// requirePNG asserts a non-trivial PNG landed at path.
func requirePNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("chart %s is empty", path)
	}
}

func TestTrendChart(t *testing.T) {
	ds := loadDataset(t, chartCSV)
	e := metrics.NewEngine(ds, nil, metrics.DefaultConfig())
	path := filepath.Join(t.TempDir(), "trend.png")

	err := TrendChart(ds.SeriesFor("Kenya"), e.GlobalAverageByYear(), "Kenya", 2019, 310.0, path)
	if err != nil {
		t.Fatalf("TrendChart: %v", err)
	}
	requirePNG(t, path)
}

func TestTrendChartWithPredictionMarker(t *testing.T) {
	ds := loadDataset(t, chartCSV)
	e := metrics.NewEngine(ds, nil, metrics.DefaultConfig())
	path := filepath.Join(t.TempDir(), "trend.png")

	// Analysis year past the observed series adds the prediction marker.
	err := TrendChart(ds.SeriesFor("Kenya"), e.GlobalAverageByYear(), "Kenya", 2025, 320.0, path)
	if err != nil {
		t.Fatalf("TrendChart: %v", err)
	}
	requirePNG(t, path)
}

func TestTrendChartEmptySeries(t *testing.T) {
	if err := TrendChart(nil, nil, "Atlantis", 2019, 0, "unused.png"); err == nil {
		t.Fatal("TrendChart on empty series should error")
	}
}

func TestComparisonChart(t *testing.T) {
	ds := loadDataset(t, chartCSV)
	e := metrics.NewEngine(ds, nil, metrics.DefaultConfig())
	path := filepath.Join(t.TempDir(), "comparison.png")

	rows := e.ComparisonSnapshot([]string{"Kenya", "Germany"})
	if err := ComparisonChart(rows, e.GlobalAverage(), path); err != nil {
		t.Fatalf("ComparisonChart: %v", err)
	}
	requirePNG(t, path)
}

func TestComparisonChartNoRows(t *testing.T) {
	if err := ComparisonChart(nil, 0, "unused.png"); err == nil {
		t.Fatal("ComparisonChart with no rows should error")
	}
}

func TestTargetChart(t *testing.T) {
	ds := loadDataset(t, chartCSV)
	e := metrics.NewEngine(ds, nil, metrics.DefaultConfig())
	path := filepath.Join(t.TempDir(), "targets.png")

	if err := TargetChart(e.ReductionTargets(310.0), 310.0, path); err != nil {
		t.Fatalf("TargetChart: %v", err)
	}
	requirePNG(t, path)
}

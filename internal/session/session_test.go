package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MikeMitch88/carbon-tracker/internal/settings"
)

const trainCSV = `Country,Year,Per_Capita_CO2_kg
Kenya,2017,300.0
Kenya,2018,305.0
Kenya,2019,310.0
Germany,2017,8800.0
Germany,2018,8600.0
Germany,2019,8400.0
`

// testSettings writes a dataset into a temp dir and points all paths there.
func testSettings(t *testing.T, csv string) settings.Settings {
	t.Helper()
	dir := t.TempDir()
	cfg := settings.Default()
	cfg.DatasetPath = filepath.Join(dir, "country_emissions.csv")
	cfg.ModelPath = filepath.Join(dir, "model.gob")
	cfg.ExportPath = filepath.Join(dir, "export.csv")
	if csv != "" {
		if err := os.WriteFile(cfg.DatasetPath, []byte(csv), 0o644); err != nil {
			t.Fatalf("write dataset: %v", err)
		}
	}
	return cfg
}

func TestOpenReady(t *testing.T) {
	s := Open(testSettings(t, trainCSV))
	if s.State != Ready {
		t.Fatalf("State = %v, want Ready (err: %v)", s.State, s.Err)
	}
	if s.ID == "" {
		t.Error("session ID empty")
	}
	if !s.CanBrowse() || !s.CanPredict() {
		t.Errorf("CanBrowse/CanPredict = %v/%v, want true/true", s.CanBrowse(), s.CanPredict())
	}

	countries := s.Countries()
	if len(countries) != 2 || countries[0] != "Germany" || countries[1] != "Kenya" {
		t.Errorf("Countries() = %v, want [Germany Kenya]", countries)
	}

	snap, err := s.Metrics("Kenya", 2019)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if snap.Current != 310.0 || snap.Predicted {
		t.Errorf("Metrics(Kenya, 2019) = (%v, predicted=%v), want (310.0, false)",
			snap.Current, snap.Predicted)
	}

	rows := s.Comparison([]string{"Kenya", "Germany", "Atlantis"})
	if len(rows) != 2 {
		t.Errorf("Comparison = %d rows, want 2", len(rows))
	}
}

func TestOpenMissingDatasetFails(t *testing.T) {
	cfg := testSettings(t, "")
	s := Open(cfg)
	if s.State != Failed {
		t.Fatalf("State = %v, want Failed", s.State)
	}
	if s.Err == nil {
		t.Error("Err = nil in Failed state")
	}
	if s.CanBrowse() || s.CanPredict() {
		t.Error("Failed session must not browse or predict")
	}
	if got := s.Countries(); len(got) != 0 {
		t.Errorf("Countries() = %v, want empty", got)
	}
	if _, err := s.Metrics("Kenya", 2019); err == nil {
		t.Error("Metrics on Failed session should error")
	}
}

func TestOpenDegradedOnUnbuildableModel(t *testing.T) {
	// A single-row dataset loads fine but cannot train a model.
	s := Open(testSettings(t, "Country,Year,Per_Capita_CO2_kg\nKenya,2019,310.0\n"))
	if s.State != Degraded {
		t.Fatalf("State = %v, want Degraded", s.State)
	}
	if !s.CanBrowse() || s.CanPredict() {
		t.Errorf("CanBrowse/CanPredict = %v/%v, want true/false", s.CanBrowse(), s.CanPredict())
	}

	// Browsing still works; out-of-dataset requests yield the fallback.
	if got := s.SeriesFor("Kenya"); len(got) != 1 {
		t.Errorf("SeriesFor(Kenya) = %d records, want 1", len(got))
	}
	snap, err := s.Metrics("Kenya", 2019)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if snap.Current != 310.0 {
		t.Errorf("Current = %v, want stored 310.0", snap.Current)
	}
}

func TestOpenRecordsRebuildWarning(t *testing.T) {
	s := Open(testSettings(t, trainCSV))
	if s.State != Ready {
		t.Fatalf("State = %v, want Ready", s.State)
	}
	found := false
	for _, w := range s.Warnings {
		if w == "prediction model was rebuilt from the dataset" {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want rebuild notice on first run", s.Warnings)
	}
}

package modelstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/pipeline"
)

const trainCSV = `Country,Year,Per_Capita_CO2_kg
Kenya,2017,300.0
Kenya,2018,305.0
Kenya,2019,310.0
Germany,2017,8800.0
Germany,2018,8600.0
Germany,2019,8400.0
`

func loadDataset(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	return ds
}

// Absent artifact: the builder runs, the result answers the smoke-test input,
// and the rebuilt artifact lands on disk.
func TestResolveAbsentArtifact(t *testing.T) {
	ds := loadDataset(t, trainCSV)
	path := filepath.Join(t.TempDir(), "model.gob")

	res, err := Resolve(path, ds)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Rebuilt {
		t.Error("Rebuilt = false, want true for absent artifact")
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a load warning for absent artifact")
	}
	if _, err := res.Model.Predict("Germany", 2019); err != nil {
		t.Errorf("resolved model cannot predict: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("rebuilt artifact not persisted: %v", err)
	}
}

// Corrupt artifact: treated exactly like an absent one.
func TestResolveCorruptArtifact(t *testing.T) {
	ds := loadDataset(t, trainCSV)
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("write corrupt artifact: %v", err)
	}

	res, err := Resolve(path, ds)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Rebuilt {
		t.Error("Rebuilt = false, want true for corrupt artifact")
	}
}

// Valid artifact: reused as-is, no rebuild, no warnings.
func TestResolveValidArtifact(t *testing.T) {
	ds := loadDataset(t, trainCSV)
	path := filepath.Join(t.TempDir(), "model.gob")

	built, err := pipeline.Build(ds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := built.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := Resolve(path, ds)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Rebuilt {
		t.Error("Rebuilt = true, want false for valid artifact")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

// Rebuild impossible (single-row dataset): ErrModelUnavailable.
func TestResolveRebuildFails(t *testing.T) {
	ds := loadDataset(t, "Country,Year,Per_Capita_CO2_kg\nKenya,2019,310.0\n")
	path := filepath.Join(t.TempDir(), "model.gob")

	_, err := Resolve(path, ds)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

// Persistence failure is non-fatal: the in-memory model is still returned,
// with a warning.
func TestResolvePersistenceFailureNonFatal(t *testing.T) {
	ds := loadDataset(t, trainCSV)
	path := filepath.Join(t.TempDir(), "no-such-dir", "model.gob")

	res, err := Resolve(path, ds)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Model == nil {
		t.Fatal("Model = nil despite successful rebuild")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "persist") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a persistence warning", res.Warnings)
	}
}

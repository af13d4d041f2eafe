// Package settings loads carbon-tracker configuration from an optional
// carbon-tracker.yaml next to the data files.
//
// Every field has a default reproducing the stock deployment, so the tool
// runs with no settings file at all. The fallback constant and the
// reduction-target fractions are deliberate heuristics with no derivation
// behind them; they live here so deployments can tune them without a rebuild.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
)

// DefaultFile is the settings filename looked up relative to the working
// directory.
const DefaultFile = "carbon-tracker.yaml"

// Settings holds all tunable configuration.
type Settings struct {
	// DatasetPath is the emissions CSV read at session start.
	DatasetPath string `yaml:"dataset_path"`
	// ModelPath is the persisted model artifact, read and (re)written here.
	ModelPath string `yaml:"model_path"`
	// ExportPath is where the dataset download copy is written. Must differ
	// from DatasetPath.
	ExportPath string `yaml:"export_path"`

	DefaultCountry string   `yaml:"default_country"`
	CompareWith    []string `yaml:"compare_with"`

	FallbackEmissions float64         `yaml:"fallback_emissions"`
	Targets           TargetFractions `yaml:"reduction_targets"`
}

// TargetFractions are the reduction milestones as fractions of the current
// value.
type TargetFractions struct {
	Near float64 `yaml:"near"`
	Mid  float64 `yaml:"mid"`
	Long float64 `yaml:"long"`
}

// Default returns the stock configuration.
func Default() Settings {
	return Settings{
		DatasetPath:       "country_emissions.csv",
		ModelPath:         "country_emissions_model.gob",
		ExportPath:        "country_co2_emissions.csv",
		DefaultCountry:    "United States",
		CompareWith:       []string{"China", "India", "Germany"},
		FallbackEmissions: metrics.DefaultFallbackEmissions,
		Targets: TargetFractions{
			Near: metrics.DefaultNearTermFraction,
			Mid:  metrics.DefaultMidTermFraction,
			Long: metrics.DefaultLongTermFraction,
		},
	}
}

// Load reads the settings file at path. A missing file is not an error: the
// defaults are returned unchanged. Fields absent from the file keep their
// defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// MetricsConfig converts the settings into the metrics engine's config.
func (s Settings) MetricsConfig() metrics.Config {
	return metrics.Config{
		FallbackEmissions: s.FallbackEmissions,
		NearTermFraction:  s.Targets.Near,
		MidTermFraction:   s.Targets.Mid,
		LongTermFraction:  s.Targets.Long,
	}
}

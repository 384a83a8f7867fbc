package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"cre/internal/logging"
)

// CalibrationFile is the filename of the optional weight calibration overlay.
const CalibrationFile = "calibration.toml"

// Calibration is a partial weight override loaded from .cre/calibration.toml.
// Only the weights present in the file are applied; everything else keeps
// the base configuration's value.
type Calibration struct {
	Weights CalibrationWeights `toml:"weights"`
}

// CalibrationWeights uses pointers so absent keys can be told apart
// from explicit zeros.
type CalibrationWeights struct {
	Semantic   *float64 `toml:"semantic"`
	Temporal   *float64 `toml:"temporal"`
	Spatial    *float64 `toml:"spatial"`
	Structural *float64 `toml:"structural"`
}

// LoadCalibration reads the calibration file under root. A missing file
// returns (nil, nil).
func LoadCalibration(root string) (*Calibration, error) {
	path := filepath.Join(root, ".cre", CalibrationFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cal Calibration
	if _, err := toml.DecodeFile(path, &cal); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", CalibrationFile, err)
	}

	return &cal, nil
}

// Apply overlays the calibration onto cfg. The merged weights are not
// validated here; callers re-run Validate afterwards.
func (cal *Calibration) Apply(cfg *SearchConfig) {
	if cal == nil {
		return
	}
	if cal.Weights.Semantic != nil {
		cfg.Weights.Semantic = *cal.Weights.Semantic
	}
	if cal.Weights.Temporal != nil {
		cfg.Weights.Temporal = *cal.Weights.Temporal
	}
	if cal.Weights.Spatial != nil {
		cfg.Weights.Spatial = *cal.Weights.Spatial
	}
	if cal.Weights.Structural != nil {
		cfg.Weights.Structural = *cal.Weights.Structural
	}
}

// LoadWithCalibration loads the base configuration, applies any
// calibration overlay, and validates the result. Calibrated weights
// that break the sum invariant surface as InvalidConfiguration rather
// than being silently corrected.
func LoadWithCalibration(root string, logger *logging.Logger) (*SearchConfig, error) {
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	cal, err := LoadCalibration(root)
	if err != nil {
		return nil, err
	}
	if cal != nil {
		cal.Apply(cfg)
		logger.Debug("Applied weight calibration", map[string]interface{}{
			"semantic":   cfg.Weights.Semantic,
			"temporal":   cfg.Weights.Temporal,
			"spatial":    cfg.Weights.Spatial,
			"structural": cfg.Weights.Structural,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

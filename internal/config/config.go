// Package config defines the search configuration that controls scoring
// weights, signal parameters, and output thresholds. Configuration is
// loaded from .cre/config.json and may be overlaid by a calibration file.
package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"cre/internal/errors"
)

// WeightSumTolerance is the allowed deviation of the weight sum from 1.0.
const WeightSumTolerance = 1e-3

// SearchConfig is the complete configuration for a retrieval session.
type SearchConfig struct {
	Version int `json:"version" mapstructure:"version"`

	Weights    WeightsConfig    `json:"weights" mapstructure:"weights"`
	Temporal   TemporalConfig   `json:"temporal" mapstructure:"temporal"`
	Spatial    SpatialConfig    `json:"spatial" mapstructure:"spatial"`
	Structural StructuralConfig `json:"structural" mapstructure:"structural"`
	Output     OutputConfig     `json:"output" mapstructure:"output"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// WeightsConfig holds the per-signal fusion weights. The four weights
// must sum to 1.0 within WeightSumTolerance.
type WeightsConfig struct {
	Semantic   float64 `json:"semantic" mapstructure:"semantic"`
	Temporal   float64 `json:"temporal" mapstructure:"temporal"`
	Spatial    float64 `json:"spatial" mapstructure:"spatial"`
	Structural float64 `json:"structural" mapstructure:"structural"`
}

// Sum returns the total of the four weights.
func (w WeightsConfig) Sum() float64 {
	return w.Semantic + w.Temporal + w.Spatial + w.Structural
}

// TemporalConfig controls recency scoring.
type TemporalConfig struct {
	// RecentBonusSeconds is the window in which a modification scores 1.0
	RecentBonusSeconds int `json:"recentBonusSeconds" mapstructure:"recentBonusSeconds"`

	// DecayFactor steepens the exponential decay between the bonus
	// window and the maximum age
	DecayFactor float64 `json:"decayFactor" mapstructure:"decayFactor"`

	// MaxAgeSeconds is the age beyond which fragments score the floor
	MaxAgeSeconds int `json:"maxAgeSeconds" mapstructure:"maxAgeSeconds"`
}

// RecentBonus returns the recency bonus window as a duration.
func (t TemporalConfig) RecentBonus() time.Duration {
	return time.Duration(t.RecentBonusSeconds) * time.Second
}

// MaxAge returns the maximum temporal age as a duration.
func (t TemporalConfig) MaxAge() time.Duration {
	return time.Duration(t.MaxAgeSeconds) * time.Second
}

// SpatialConfig controls proximity scoring.
type SpatialConfig struct {
	// SameDirectoryBonus scales the extra credit for fragments in the
	// active file's directory
	SameDirectoryBonus float64 `json:"sameDirectoryBonus" mapstructure:"sameDirectoryBonus"`

	// MaxDistance caps the directory distance used in decay
	MaxDistance int `json:"maxDistance" mapstructure:"maxDistance"`
}

// StructuralConfig controls structural scoring bonuses.
type StructuralConfig struct {
	SameLanguageBonus float64 `json:"sameLanguageBonus" mapstructure:"sameLanguageBonus"`
	FunctionTypeBonus float64 `json:"functionTypeBonus" mapstructure:"functionTypeBonus"`
	ClassTypeBonus    float64 `json:"classTypeBonus" mapstructure:"classTypeBonus"`
}

// OutputConfig controls result filtering and truncation.
type OutputConfig struct {
	MaxResults           int     `json:"maxResults" mapstructure:"maxResults"`
	MinSemanticThreshold float64 `json:"minSemanticThreshold" mapstructure:"minSemanticThreshold"`
	MinFinalScore        float64 `json:"minFinalScore" mapstructure:"minFinalScore"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *SearchConfig {
	return &SearchConfig{
		Version: 1,
		Weights: WeightsConfig{
			Semantic:   0.4,
			Temporal:   0.2,
			Spatial:    0.25,
			Structural: 0.15,
		},
		Temporal: TemporalConfig{
			RecentBonusSeconds: 3600, // 1 hour
			DecayFactor:        2.0,
			MaxAgeSeconds:      2592000, // 30 days
		},
		Spatial: SpatialConfig{
			SameDirectoryBonus: 0.5,
			MaxDistance:        10,
		},
		Structural: StructuralConfig{
			SameLanguageBonus: 0.1,
			FunctionTypeBonus: 0.2,
			ClassTypeBonus:    0.15,
		},
		Output: OutputConfig{
			MaxResults:           10,
			MinSemanticThreshold: 0.3,
			MinFinalScore:        0.2,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.cre/config.json.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(root string) (*SearchConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".cre"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg SearchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so partial config files merge over
// the defaults instead of zeroing unspecified sections.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("weights.semantic", d.Weights.Semantic)
	v.SetDefault("weights.temporal", d.Weights.Temporal)
	v.SetDefault("weights.spatial", d.Weights.Spatial)
	v.SetDefault("weights.structural", d.Weights.Structural)
	v.SetDefault("temporal.recentBonusSeconds", d.Temporal.RecentBonusSeconds)
	v.SetDefault("temporal.decayFactor", d.Temporal.DecayFactor)
	v.SetDefault("temporal.maxAgeSeconds", d.Temporal.MaxAgeSeconds)
	v.SetDefault("spatial.sameDirectoryBonus", d.Spatial.SameDirectoryBonus)
	v.SetDefault("spatial.maxDistance", d.Spatial.MaxDistance)
	v.SetDefault("structural.sameLanguageBonus", d.Structural.SameLanguageBonus)
	v.SetDefault("structural.functionTypeBonus", d.Structural.FunctionTypeBonus)
	v.SetDefault("structural.classTypeBonus", d.Structural.ClassTypeBonus)
	v.SetDefault("output.maxResults", d.Output.MaxResults)
	v.SetDefault("output.minSemanticThreshold", d.Output.MinSemanticThreshold)
	v.SetDefault("output.minFinalScore", d.Output.MinFinalScore)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the configuration to <root>/.cre/config.json.
func (c *SearchConfig) Save(root string) error {
	dir := filepath.Join(root, ".cre")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks the configuration. Weight violations are reported
// exactly as found, never corrected.
func (c *SearchConfig) Validate() error {
	const op = "config.validate"

	for name, w := range map[string]float64{
		"weights.semantic":   c.Weights.Semantic,
		"weights.temporal":   c.Weights.Temporal,
		"weights.spatial":    c.Weights.Spatial,
		"weights.structural": c.Weights.Structural,
	} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return errors.New(errors.InvalidConfiguration, op,
				name+" must be in [0, 1]").WithDetails(map[string]float64{name: w})
		}
	}

	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > WeightSumTolerance {
		return errors.New(errors.InvalidConfiguration, op,
			"scoring weights must sum to 1.0").WithDetails(map[string]float64{"sum": sum})
	}

	if c.Temporal.RecentBonusSeconds < 0 {
		return errors.New(errors.InvalidConfiguration, op, "temporal.recentBonusSeconds must not be negative")
	}
	if c.Temporal.MaxAgeSeconds <= 0 {
		return errors.New(errors.InvalidConfiguration, op, "temporal.maxAgeSeconds must be positive")
	}
	if c.Temporal.DecayFactor <= 0 {
		return errors.New(errors.InvalidConfiguration, op, "temporal.decayFactor must be positive")
	}

	if c.Spatial.SameDirectoryBonus < 0 {
		return errors.New(errors.InvalidConfiguration, op, "spatial.sameDirectoryBonus must not be negative")
	}
	if c.Spatial.MaxDistance < 1 {
		return errors.New(errors.InvalidConfiguration, op, "spatial.maxDistance must be at least 1")
	}

	if c.Structural.SameLanguageBonus < 0 || c.Structural.FunctionTypeBonus < 0 || c.Structural.ClassTypeBonus < 0 {
		return errors.New(errors.InvalidConfiguration, op, "structural bonuses must not be negative")
	}

	if c.Output.MaxResults < 1 {
		return errors.New(errors.InvalidConfiguration, op, "output.maxResults must be at least 1")
	}
	if c.Output.MinSemanticThreshold < 0 || c.Output.MinSemanticThreshold > 1 {
		return errors.New(errors.InvalidConfiguration, op, "output.minSemanticThreshold must be in [0, 1]")
	}
	if c.Output.MinFinalScore < 0 || c.Output.MinFinalScore > 1 {
		return errors.New(errors.InvalidConfiguration, op, "output.minFinalScore must be in [0, 1]")
	}

	return nil
}

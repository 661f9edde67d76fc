package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// EventWeights are the component weights for the recommended event
// ordering.
type EventWeights struct {
	Recency    float64 `json:"recency"`    // default 0.4
	Proximity  float64 `json:"proximity"`  // default 0.4
	Popularity float64 `json:"popularity"` // default 0.2
}

// Weights holds every weight configuration used by discovery.
type Weights struct {
	Event EventWeights `json:"event"`
}

// CalibrationFile is the JSON structure of the on-disk calibration.
type CalibrationFile struct {
	Version string  `json:"version"`
	Weights Weights `json:"weights"`
}

// DefaultWeights returns the stock weight configuration. Recency and
// proximity dominate so the landing view favors upcoming nearby events,
// with popularity as a lighter signal.
func DefaultWeights() *Weights {
	return &Weights{
		Event: EventWeights{
			Recency:    0.4,
			Proximity:  0.4,
			Popularity: 0.2,
		},
	}
}

// LoadCalibration reads weights from a JSON calibration file. A missing
// or unreadable file degrades to defaults, returned alongside the error
// so the caller can log and continue. Partial files merge over the
// defaults: only non-zero values override.
func LoadCalibration(path string) (*Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", path, "error", err)
		return DefaultWeights(), fmt.Errorf("read calibration file: %w", err)
	}

	var cal CalibrationFile
	if err := json.Unmarshal(data, &cal); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", path, "error", err)
		return DefaultWeights(), fmt.Errorf("parse calibration file: %w", err)
	}

	merged := Merge(DefaultWeights(), &cal.Weights)
	logOverrides(DefaultWeights(), merged)
	return merged, nil
}

// Merge applies non-zero override values on top of the base weights and
// returns a new Weights. A nil base falls back to defaults; a nil
// override returns a copy of the base.
func Merge(base, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	if override == nil {
		return &result
	}

	if override.Event.Recency != 0 {
		result.Event.Recency = override.Event.Recency
	}
	if override.Event.Proximity != 0 {
		result.Event.Proximity = override.Event.Proximity
	}
	if override.Event.Popularity != 0 {
		result.Event.Popularity = override.Event.Popularity
	}

	return &result
}

// logOverrides records which weights differ from defaults after a load.
func logOverrides(defaults, loaded *Weights) {
	var overrides []string

	if loaded.Event.Recency != defaults.Event.Recency {
		overrides = append(overrides, fmt.Sprintf("event.recency: %.2f -> %.2f",
			defaults.Event.Recency, loaded.Event.Recency))
	}
	if loaded.Event.Proximity != defaults.Event.Proximity {
		overrides = append(overrides, fmt.Sprintf("event.proximity: %.2f -> %.2f",
			defaults.Event.Proximity, loaded.Event.Proximity))
	}
	if loaded.Event.Popularity != defaults.Event.Popularity {
		overrides = append(overrides, fmt.Sprintf("event.popularity: %.2f -> %.2f",
			defaults.Event.Popularity, loaded.Event.Popularity))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}

package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration contains usable values.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.EggDir == "" {
		errs = append(errs, errors.New("paths.egg_dir is required"))
	}
	if c.Paths.PitchDir == "" {
		errs = append(errs, errors.New("paths.pitch_dir is required"))
	}
	switch c.Matching.Mode {
	case "first", "stable":
	default:
		errs = append(errs, fmt.Errorf("matching.mode must be first or stable, got %q", c.Matching.Mode))
	}
	if !(c.Matching.Tolerance > 0) || math.IsInf(c.Matching.Tolerance, 0) {
		errs = append(errs, fmt.Errorf("matching.tolerance must be positive, got %v", c.Matching.Tolerance))
	}
	switch c.Matching.Bound {
	case "inclusive", "exclusive":
	default:
		errs = append(errs, fmt.Errorf("matching.bound must be inclusive or exclusive, got %q", c.Matching.Bound))
	}
	if c.Matching.IndexThreshold < 0 {
		errs = append(errs, errors.New("matching.index_threshold must be >= 0"))
	}
	switch c.Quarantine.Policy {
	case "report", "remove", "label":
	default:
		errs = append(errs, fmt.Errorf("quarantine.policy must be report, remove or label, got %q", c.Quarantine.Policy))
	}
	for field, w := range c.Histogram.BinWidths {
		if !(w > 0) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Errorf("histogram.binwidths.%s must be positive, got %v", field, w))
		}
	}
	if c.Acquisition.Gap <= 0 {
		errs = append(errs, errors.New("acquisition.gap must be positive"))
	}
	if c.Acquisition.Length <= 0 {
		errs = append(errs, errors.New("acquisition.length must be positive"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not recognized", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

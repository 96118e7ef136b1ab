package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		c.Paths.DBPath = v
	}

	var err error
	for _, p := range []*string{&c.Paths.EggDir, &c.Paths.PitchDir, &c.Paths.QuarantineDir, &c.Paths.DBPath} {
		*p = strings.TrimSpace(*p)
		if *p, err = expandPath(*p); err != nil {
			return fmt.Errorf("normalize paths: %w", err)
		}
	}
	if c.Paths.QuarantineDir == "" && c.Paths.EggDir != "" {
		c.Paths.QuarantineDir = filepath.Join(c.Paths.EggDir, "quarantine")
	}

	c.Matching.Mode = strings.ToLower(strings.TrimSpace(c.Matching.Mode))
	if c.Matching.Mode == "" {
		c.Matching.Mode = DefaultMode
	}
	c.Matching.Bound = strings.ToLower(strings.TrimSpace(c.Matching.Bound))
	if c.Matching.Bound == "" {
		c.Matching.Bound = DefaultBound
	}
	c.Quarantine.Policy = strings.ToLower(strings.TrimSpace(c.Quarantine.Policy))
	if c.Quarantine.Policy == "" {
		c.Quarantine.Policy = DefaultPolicy
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Histogram.BinWidths == nil {
		c.Histogram.BinWidths = map[string]float64{}
	}
	return nil
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/katydid-analysis/eggmatch/internal/config"
	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/stablematch"
	"github.com/katydid-analysis/eggmatch/pkg/eggmatch"
	"github.com/katydid-analysis/eggmatch/pkg/logger"
)

type globalFlags struct {
	config   string
	db       string
	eggDir   string
	pitchDir string
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := c.applyLogLevel(cfg.Logging.Level); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	derivedQuarantine := cfg.Paths.QuarantineDir == filepath.Join(cfg.Paths.EggDir, quarantine.DefaultDirName)
	overrides := []struct {
		flag string
		dst  *string
	}{
		{c.flags.db, &cfg.Paths.DBPath},
		{c.flags.eggDir, &cfg.Paths.EggDir},
		{c.flags.pitchDir, &cfg.Paths.PitchDir},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(o.flag); v != "" {
			expanded, err := config.ExpandPath(v)
			if err != nil {
				return err
			}
			*o.dst = expanded
		}
	}
	if derivedQuarantine {
		cfg.Paths.QuarantineDir = filepath.Join(cfg.Paths.EggDir, quarantine.DefaultDirName)
	}
	return nil
}

// applyLogLevel sets the process logger; the --log-level flag wins over the
// configured level.
func (c *commandContext) applyLogLevel(configured string) error {
	name := configured
	if v := strings.TrimSpace(c.flags.logLevel); v != "" {
		name = v
	}
	if name == "" {
		return nil
	}
	level, err := logger.ParseLevel(name)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

// newService builds a service from the loaded configuration; extra options
// are applied last.
func (c *commandContext) newService(extra ...eggmatch.Option) (eggmatch.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	mode, err := eggmatch.ParseMode(cfg.Matching.Mode)
	if err != nil {
		return nil, err
	}
	bound, err := stablematch.ParseBound(cfg.Matching.Bound)
	if err != nil {
		return nil, err
	}
	policy, err := quarantine.ParsePolicy(cfg.Quarantine.Policy)
	if err != nil {
		return nil, err
	}

	opts := []eggmatch.Option{
		eggmatch.WithDataDirs(cfg.Paths.EggDir, cfg.Paths.PitchDir),
		eggmatch.WithQuarantineDir(cfg.Paths.QuarantineDir),
		eggmatch.WithDBPath(cfg.Paths.DBPath),
		eggmatch.WithMode(mode),
		eggmatch.WithTolerance(cfg.Matching.Tolerance),
		eggmatch.WithBound(bound),
		eggmatch.WithIndexThreshold(cfg.Matching.IndexThreshold),
		eggmatch.WithQuarantinePolicy(policy, cfg.Quarantine.CheckBeforeProcess),
		eggmatch.WithAcquisition(cfg.Acquisition.Gap, cfg.Acquisition.Length),
		eggmatch.WithLogger(logger.GetLogger()),
	}
	svc, err := eggmatch.NewService(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (c *commandContext) withService(fn func(eggmatch.Service) error, extra ...eggmatch.Option) error {
	svc, err := c.newService(extra...)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

package eggmatch

import (
	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/stablematch"
	"github.com/katydid-analysis/eggmatch/internal/stats"
	"github.com/katydid-analysis/eggmatch/internal/storage"
	"github.com/katydid-analysis/eggmatch/internal/timematch"
)

type Config struct {
	EggDir        string
	PitchDir      string
	QuarantineDir string
	DBPath        string

	Mode           Mode
	Tolerance      float64
	Bound          stablematch.Bound
	IndexThreshold int

	QuarantinePolicy   quarantine.Policy
	CheckBeforeProcess bool
	Record             bool

	AcqGap    float64
	AcqLength float64

	Logger  Logger
	Storage Storage
}

type Option func(*Config)

func WithDataDirs(eggDir, pitchDir string) Option {
	return func(c *Config) {
		c.EggDir = eggDir
		c.PitchDir = pitchDir
	}
}

func WithQuarantineDir(dir string) Option {
	return func(c *Config) {
		c.QuarantineDir = dir
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithMode(mode Mode) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

func WithTolerance(tol float64) Option {
	return func(c *Config) {
		c.Tolerance = tol
	}
}

// WithBound sets the tolerance bound of stable mode. First mode always
// uses a strict bound.
func WithBound(b stablematch.Bound) Option {
	return func(c *Config) {
		c.Bound = b
	}
}

// WithIndexThreshold makes first mode search pitch times through an ordered
// index once a seed has at least n of them. Zero disables the index.
func WithIndexThreshold(n int) Option {
	return func(c *Config) {
		c.IndexThreshold = n
	}
}

// WithQuarantinePolicy sets what Check does with invalid seeds and whether
// Process checks first.
func WithQuarantinePolicy(p quarantine.Policy, checkBeforeProcess bool) Option {
	return func(c *Config) {
		c.QuarantinePolicy = p
		c.CheckBeforeProcess = checkBeforeProcess
	}
}

// WithRecord controls whether Process writes a run to the ledger.
func WithRecord(record bool) Option {
	return func(c *Config) {
		c.Record = record
	}
}

func WithAcquisition(gap, length float64) Option {
	return func(c *Config) {
		c.AcqGap = gap
		c.AcqLength = length
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:           storage.DefaultDBFile,
		Mode:             ModeFirst,
		Tolerance:        timematch.DefaultTolerance,
		Bound:            stablematch.Exclusive,
		IndexThreshold:   256,
		QuarantinePolicy: quarantine.Report,
		Record:           true,
		AcqGap:           stats.DefaultGap,
		AcqLength:        0.02,
	}
}

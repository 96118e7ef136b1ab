package config

// Default values shared with the sample configuration.
const (
	DefaultMode           = "first"
	DefaultTolerance      = 2e-4
	DefaultBound          = "exclusive"
	DefaultIndexThreshold = 256
	DefaultPolicy         = "report"
	DefaultGap            = 0.1
	DefaultAcqLength      = 0.02
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			EggDir:   "~/eggmatch/egg",
			PitchDir: "~/eggmatch/pitch",
			DBPath:   "~/.local/share/eggmatch/eggmatch.sqlite3",
		},
		Matching: Matching{
			Mode:           DefaultMode,
			Tolerance:      DefaultTolerance,
			Bound:          DefaultBound,
			IndexThreshold: DefaultIndexThreshold,
		},
		Quarantine: Quarantine{
			CheckBeforeProcess: true,
			Policy:             DefaultPolicy,
		},
		Histogram: Histogram{
			BinWidths: map[string]float64{
				"StartTimeInAcq": 0.025e-3,
				"StartFrequency": 1e5,
				"Slope":          1e7,
				"TotalPower":     1e-16,
			},
		},
		Acquisition: Acquisition{
			Gap:    DefaultGap,
			Length: DefaultAcqLength,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

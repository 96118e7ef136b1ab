package eggmatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/katydid-analysis/eggmatch/internal/egg"
	"github.com/katydid-analysis/eggmatch/internal/pitch"
	"github.com/katydid-analysis/eggmatch/internal/stats"
)

// Mode selects the time filter.
type Mode string

const (
	// ModeFirst pairs each egg event with the first pitch time in tolerance.
	ModeFirst Mode = "first"
	// ModeStable builds a one-to-one stable matching.
	ModeStable Mode = "stable"
)

// ParseMode accepts "first" or "stable".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFirst, ModeStable:
		return m, nil
	case "":
		return ModeFirst, nil
	}
	return "", fmt.Errorf("unknown mode %q (want first or stable)", s)
}

// Dataset is one seed's egg export and pitch-angle file.
type Dataset struct {
	Seed      string
	EggPath   string
	PitchPath string
	Egg       *egg.File
	Pitch     []pitch.Event
}

// MatchedEvent is a reconstructed event tied to its simulated counterpart.
type MatchedEvent struct {
	Seed       string
	EggIndex   int
	PitchIndex int
	EggTime    float64
	PitchTime  float64
	Angle      float64
}

// Diff returns |EggTime - PitchTime|.
func (m MatchedEvent) Diff() float64 {
	if d := m.EggTime - m.PitchTime; d >= 0 {
		return d
	}
	return m.PitchTime - m.EggTime
}

// Filtered is the outcome of filtering one dataset.
type Filtered struct {
	Seed    string
	Mode    Mode
	Matched []MatchedEvent
	// UnmatchedEggs lists candidate indices with no counterpart.
	UnmatchedEggs []int
	Detected      int
	Simulated     int
}

// SeedDetection is the detection count of one seed.
type SeedDetection struct {
	Seed      string
	Detected  int
	Simulated int
	Matched   int
}

// Efficiency returns Detected/Simulated in percent.
func (d SeedDetection) Efficiency() float64 {
	return stats.Efficiency(d.Detected, d.Simulated)
}

func (d SeedDetection) String() string {
	return fmt.Sprintf("%s: %d/%d events detected (%.2f%%)", d.Seed, d.Detected, d.Simulated, d.Efficiency())
}

// Detection sums SeedDetection over all seeds.
type Detection struct {
	Seeds     []SeedDetection
	Detected  int
	Simulated int
	Matched   int
}

func (d *Detection) add(s SeedDetection) {
	d.Seeds = append(d.Seeds, s)
	d.Detected += s.Detected
	d.Simulated += s.Simulated
	d.Matched += s.Matched
}

// Efficiency returns the overall detection percentage.
func (d *Detection) Efficiency() float64 {
	return stats.Efficiency(d.Detected, d.Simulated)
}

// Acquisition is a reconstructed acquisition window with what fell into it.
type Acquisition struct {
	stats.Window
	Tracks int
	Events int
	Pitch  int
}

// RunRecord is a ledger entry.
type RunRecord struct {
	ID        string
	Mode      Mode
	Tolerance float64
	Bound     string
	SeedCount int
	CreatedAt time.Time
	Detection Detection
}

// ProcessResult is everything Process did.
type ProcessResult struct {
	RunID     string
	Mode      Mode
	Invalid   []string
	Filtered  []Filtered
	Detection Detection
}

// Package seed extracts the SeedNNN identifier that ties a simulation run's
// egg export to its pitch-angle file.
package seed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
)

// The leading .* is greedy, so the last "Seed" in a name wins.
var seedRegexp = regexp.MustCompile(`.*(?P<seed>Seed\d{0,3})`)

// ErrNotDir is returned by FromDir for a path that is not a directory.
var ErrNotDir = errors.New("seed: not a directory")

// Extract returns the seed found in name.
func Extract(name string) (string, bool) {
	m := seedRegexp.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[seedRegexp.SubexpIndex("seed")], true
}

// ExtractAll returns the seeds of names, skipping names without one.
func ExtractAll(names []string) []string {
	seeds := make([]string, 0, len(names))
	for _, n := range names {
		if s, ok := Extract(n); ok {
			seeds = append(seeds, s)
		}
	}
	return seeds
}

// FromDir returns the seeds of the regular files in dir, keyed to their paths.
// When several files share a seed the last one in directory order is kept;
// use EggFileName or PitchFileName to locate a specific data file.
func FromDir(dir string) (map[string]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if s, ok := Extract(e.Name()); ok {
			out[s] = filepath.Join(dir, e.Name())
		}
	}
	return out, nil
}

// EggFileName is the egg export file name for a seed.
func EggFileName(seed string) string { return seed + ".csv" }

// PitchFileName is the pitch-angle file name for a seed.
func PitchFileName(seed string) string { return "pitchangles_" + seed + ".txt" }

// Pairing splits two seed sets into the seeds present on both sides and the
// leftovers of each side. All lists are sorted.
type Pairing struct {
	Both      []string
	EggOnly   []string
	PitchOnly []string
}

// Pair compares the egg and pitch seed sets.
func Pair(eggSeeds, pitchSeeds []string) Pairing {
	inEgg := make(map[string]bool, len(eggSeeds))
	for _, s := range eggSeeds {
		inEgg[s] = true
	}
	inPitch := make(map[string]bool, len(pitchSeeds))
	for _, s := range pitchSeeds {
		inPitch[s] = true
	}

	var p Pairing
	for s := range inEgg {
		if inPitch[s] {
			p.Both = append(p.Both, s)
		} else {
			p.EggOnly = append(p.EggOnly, s)
		}
	}
	for s := range inPitch {
		if !inEgg[s] {
			p.PitchOnly = append(p.PitchOnly, s)
		}
	}
	slices.Sort(p.Both)
	slices.Sort(p.EggOnly)
	slices.Sort(p.PitchOnly)
	return p
}

// Keys returns the sorted keys of a FromDir result.
func Keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

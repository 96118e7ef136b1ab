package eggmatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/katydid-analysis/eggmatch/internal/egg"
	"github.com/katydid-analysis/eggmatch/internal/pitch"
	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/seed"
	"github.com/katydid-analysis/eggmatch/internal/stablematch"
	"github.com/katydid-analysis/eggmatch/internal/stats"
	"github.com/katydid-analysis/eggmatch/internal/timematch"
	"github.com/katydid-analysis/eggmatch/pkg/logger"
	"github.com/katydid-analysis/eggmatch/pkg/utils"
)

// ErrNoStorage is returned by ledger calls when recording is disabled.
var ErrNoStorage = errors.New("eggmatch: no run ledger configured")

// ErrUnknownSeed is returned when a seed has no dataset.
var ErrUnknownSeed = errors.New("eggmatch: unknown seed")

// eggmatchService is the default implementation of the Service interface.
type eggmatchService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.EggDir == "" || cfg.PitchDir == "" {
		return nil, errors.New("eggmatch: egg and pitch directories are required")
	}
	if cfg.Mode != ModeFirst && cfg.Mode != ModeStable {
		return nil, fmt.Errorf("eggmatch: unknown mode %q", cfg.Mode)
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else if cfg.DBPath != "" {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &eggmatchService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Datasets loads every seed present in both data directories. Seeds found on
// one side only are logged and skipped.
func (s *eggmatchService) Datasets(ctx context.Context) ([]Dataset, error) {
	return s.datasets(ctx, nil)
}

func (s *eggmatchService) datasets(ctx context.Context, skip []string) ([]Dataset, error) {
	pairing, eggFiles, pitchFiles, err := s.pairSeeds()
	if err != nil {
		return nil, err
	}
	for _, sd := range pairing.EggOnly {
		s.log.Warnf("%s found in %s but not in %s", sd, s.config.EggDir, s.config.PitchDir)
	}
	for _, sd := range pairing.PitchOnly {
		s.log.Warnf("%s found in %s but not in %s", sd, s.config.PitchDir, s.config.EggDir)
	}

	out := make([]Dataset, 0, len(pairing.Both))
	for _, sd := range pairing.Both {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if slices.Contains(skip, sd) {
			s.log.Warnf("%s: skipping invalid egg export", sd)
			continue
		}
		ds, err := loadDataset(sd, eggFiles[sd], pitchFiles[sd])
		if err != nil {
			return nil, err
		}
		s.log.Debugf("%s: %d candidates, %d tracks, %d pitch events",
			sd, len(ds.Egg.Candidates), len(ds.Egg.Tracks), len(ds.Pitch))
		out = append(out, ds)
	}
	return out, nil
}

func (s *eggmatchService) pairSeeds() (seed.Pairing, map[string]string, map[string]string, error) {
	eggFiles, err := seedFiles(s.config.EggDir, seed.EggFileName)
	if err != nil {
		return seed.Pairing{}, nil, nil, err
	}
	pitchFiles, err := seedFiles(s.config.PitchDir, seed.PitchFileName)
	if err != nil {
		return seed.Pairing{}, nil, nil, err
	}
	return seed.Pair(seed.Keys(eggFiles), seed.Keys(pitchFiles)), eggFiles, pitchFiles, nil
}

// seedFiles maps each seed mentioned in dir to its data file, named by
// fileName. Seeds without that exact file are left out.
func seedFiles(dir string, fileName func(string) string) (map[string]string, error) {
	all, err := seed.FromDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for sd := range all {
		path := filepath.Join(dir, fileName(sd))
		if utils.Exists(path) {
			out[sd] = path
		}
	}
	return out, nil
}

func loadDataset(sd, eggPath, pitchPath string) (Dataset, error) {
	f, err := egg.ReadFile(eggPath)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read egg export: %w", err)
	}
	events, err := pitch.ReadFile(pitchPath)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read pitch angles: %w", err)
	}
	return Dataset{Seed: sd, EggPath: eggPath, PitchPath: pitchPath, Egg: f, Pitch: events}, nil
}

// Filter pairs the candidate start times of ds with its pitch-angle times.
func (s *eggmatchService) Filter(ctx context.Context, ds Dataset, mode Mode) (*Filtered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds.Egg == nil {
		return nil, fmt.Errorf("%s: dataset has no egg export", ds.Seed)
	}

	eggTimes := egg.Times(ds.Egg.Candidates)
	pitchTimes := pitch.Times(ds.Pitch)
	out := &Filtered{Seed: ds.Seed, Mode: mode, Detected: len(eggTimes), Simulated: len(pitchTimes)}

	var eggIdx, pitchIdx []int
	switch mode {
	case ModeFirst:
		pairs, err := s.firstMatch(eggTimes, pitchTimes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Seed, err)
		}
		eggIdx, pitchIdx = pairs.Events, pairs.References
	case ModeStable:
		res, err := stablematch.Match(eggTimes, pitchTimes, stablematch.Options{
			Tolerance: s.config.Tolerance,
			Bound:     s.config.Bound,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Seed, err)
		}
		for _, p := range res.Pairs() {
			eggIdx = append(eggIdx, p.Proposer)
			pitchIdx = append(pitchIdx, p.Acceptor)
		}
	default:
		return nil, fmt.Errorf("eggmatch: unknown mode %q", mode)
	}

	matched := make([]bool, len(eggTimes))
	for k := range eggIdx {
		e, p := eggIdx[k], pitchIdx[k]
		matched[e] = true
		out.Matched = append(out.Matched, MatchedEvent{
			Seed:       ds.Seed,
			EggIndex:   e,
			PitchIndex: p,
			EggTime:    eggTimes[e],
			PitchTime:  pitchTimes[p],
			Angle:      ds.Pitch[p].Angle,
		})
	}
	for i, ok := range matched {
		if !ok {
			out.UnmatchedEggs = append(out.UnmatchedEggs, i)
		}
	}
	return out, nil
}

func (s *eggmatchService) firstMatch(events, refs []float64) (timematch.Pairs, error) {
	if s.config.IndexThreshold > 0 && len(refs) >= s.config.IndexThreshold {
		idx, err := timematch.NewIndex(refs, s.config.Tolerance)
		if err != nil {
			return timematch.Pairs{}, err
		}
		return idx.Compare(events)
	}
	return timematch.Compare(events, refs, s.config.Tolerance)
}

// Detect reports how many simulated events Katydid reconstructed per seed.
func (s *eggmatchService) Detect(ctx context.Context) (*Detection, error) {
	sets, err := s.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	det := &Detection{}
	for _, ds := range sets {
		f, err := s.Filter(ctx, ds, s.config.Mode)
		if err != nil {
			return nil, err
		}
		d := SeedDetection{Seed: ds.Seed, Detected: f.Detected, Simulated: f.Simulated, Matched: len(f.Matched)}
		s.log.Infof("%s", d)
		det.add(d)
	}
	if len(det.Seeds) > 1 {
		s.log.Infof("Total events detected: %d/%d (%.2f%%)", det.Detected, det.Simulated, det.Efficiency())
	}
	return det, nil
}

// Check validates the egg exports and applies policy to invalid seeds.
func (s *eggmatchService) Check(ctx context.Context, policy quarantine.Policy) (*quarantine.Result, error) {
	res, err := quarantine.Check(ctx, quarantine.Dirs{
		Egg:        s.config.EggDir,
		Pitch:      s.config.PitchDir,
		Quarantine: s.config.QuarantineDir,
	}, policy, s.log)
	if err != nil {
		return res, fmt.Errorf("checking egg exports: %w", err)
	}
	if n := len(res.Findings); n > 0 {
		s.log.Warnf("%d of %d egg exports invalid (policy %s)", n, res.Checked, policy)
	}
	return res, nil
}

// Process checks the data tree, filters every dataset and records the run.
func (s *eggmatchService) Process(ctx context.Context) (*ProcessResult, error) {
	out := &ProcessResult{Mode: s.config.Mode}

	if s.config.CheckBeforeProcess {
		res, err := s.Check(ctx, s.config.QuarantinePolicy)
		if err != nil {
			return nil, err
		}
		out.Invalid = res.Seeds()
	}

	sets, err := s.datasets(ctx, out.Invalid)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Processing %d seeds in %s and %s", len(sets), s.config.EggDir, s.config.PitchDir)

	var pairs []MatchedEvent
	for _, ds := range sets {
		f, err := s.Filter(ctx, ds, s.config.Mode)
		if err != nil {
			return nil, err
		}
		out.Filtered = append(out.Filtered, *f)
		pairs = append(pairs, f.Matched...)
		out.Detection.add(SeedDetection{
			Seed:      f.Seed,
			Detected:  f.Detected,
			Simulated: f.Simulated,
			Matched:   len(f.Matched),
		})
	}

	if !s.config.Record {
		return out, nil
	}
	if s.storage == nil {
		s.log.Warnf("run not recorded: no ledger configured")
		return out, nil
	}
	id, err := s.storage.SaveRun(RunRecord{
		Mode:      s.config.Mode,
		Tolerance: s.config.Tolerance,
		Bound:     s.boundName(),
		CreatedAt: time.Now(),
		Detection: out.Detection,
	}, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	out.RunID = id
	s.log.Infof("Recorded run %s (%d pairs)", id, len(pairs))
	return out, nil
}

func (s *eggmatchService) boundName() string {
	if s.config.Mode == ModeFirst {
		return stablematch.Exclusive.String()
	}
	return s.config.Bound.String()
}

// Histogram bins a candidate_tracks variable over all seeds. With filtered
// set only tracks whose start time matches a pitch time are counted.
func (s *eggmatchService) Histogram(ctx context.Context, field string, binwidth float64, filtered bool) (stats.Hist, error) {
	sets, err := s.Datasets(ctx)
	if err != nil {
		return stats.Hist{}, err
	}
	var values []float64
	for _, ds := range sets {
		tracks := ds.Egg.Tracks
		if filtered {
			pairs, err := s.firstMatch(egg.Times(tracks), pitch.Times(ds.Pitch))
			if err != nil {
				return stats.Hist{}, fmt.Errorf("%s: %w", ds.Seed, err)
			}
			tracks = timematch.Select(tracks, pairs.Events)
		}
		if ds.Egg.HasColumn(field) {
			values = append(values, egg.Values(tracks, field)...)
		}
	}
	if len(values) == 0 {
		s.log.Warnf("no %s values found", field)
	}
	return stats.Histogram(values, binwidth)
}

// Acquisitions splits one seed's tracks into acquisition windows.
func (s *eggmatchService) Acquisitions(ctx context.Context, sd string) ([]Acquisition, error) {
	pairing, eggFiles, pitchFiles, err := s.pairSeeds()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(pairing.Both, sd) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeed, sd)
	}
	ds, err := loadDataset(sd, eggFiles[sd], pitchFiles[sd])
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	windows := stats.Acquisitions(egg.Times(ds.Egg.Tracks), s.config.AcqGap, s.config.AcqLength)
	out := make([]Acquisition, len(windows))
	for i, w := range windows {
		out[i] = Acquisition{
			Window: w,
			Tracks: countIn(w, egg.Times(ds.Egg.Tracks)),
			Events: countIn(w, egg.Times(ds.Egg.Candidates)),
			Pitch:  countIn(w, pitch.Times(ds.Pitch)),
		}
	}
	return out, nil
}

func countIn(w stats.Window, times []float64) int {
	n := 0
	for _, t := range times {
		if w.Contains(t) {
			n++
		}
	}
	return n
}

func (s *eggmatchService) Runs(limit int) ([]RunRecord, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	return s.storage.ListRuns(limit)
}

// Run returns a recorded run with its matched pairs.
func (s *eggmatchService) Run(id string) (*RunRecord, []MatchedEvent, error) {
	if s.storage == nil {
		return nil, nil, ErrNoStorage
	}
	rec, err := s.storage.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	pairs, err := s.storage.GetPairs(id)
	if err != nil {
		return nil, nil, err
	}
	return rec, pairs, nil
}

func (s *eggmatchService) DeleteRun(id string) error {
	if s.storage == nil {
		return ErrNoStorage
	}
	return s.storage.DeleteRun(id)
}

// Close releases database resources.
func (s *eggmatchService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

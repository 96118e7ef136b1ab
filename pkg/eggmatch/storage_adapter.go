package eggmatch

import (
	"time"

	"github.com/katydid-analysis/eggmatch/internal/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveRun(run RunRecord, pairs []MatchedEvent) (string, error) {
	row := storage.Run{
		ID:        run.ID,
		Mode:      string(run.Mode),
		Tolerance: run.Tolerance,
		Bound:     run.Bound,
		Seeds:     run.SeedCount,
		Simulated: run.Detection.Simulated,
		Detected:  run.Detection.Detected,
		Matched:   run.Detection.Matched,
		CreatedAt: run.CreatedAt,
	}
	if row.Seeds == 0 {
		row.Seeds = len(run.Detection.Seeds)
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	seeds := make([]storage.SeedResult, len(run.Detection.Seeds))
	for i, d := range run.Detection.Seeds {
		seeds[i] = storage.SeedResult{
			Seed:      d.Seed,
			Simulated: d.Simulated,
			Detected:  d.Detected,
			Matched:   d.Matched,
		}
	}

	rows := make([]storage.MatchedPair, len(pairs))
	for i, p := range pairs {
		rows[i] = storage.MatchedPair{
			Seed:      p.Seed,
			EggIndex:  p.EggIndex,
			PitchIdx:  p.PitchIndex,
			EggTime:   p.EggTime,
			PitchTime: p.PitchTime,
			Angle:     p.Angle,
		}
	}
	return s.db.RecordRun(row, seeds, rows)
}

func (s *storageAdapter) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.ListRuns(limit)
	if err != nil {
		return nil, err
	}
	out := make([]RunRecord, len(rows))
	for i, r := range rows {
		out[i] = toRecord(r)
	}
	return out, nil
}

func (s *storageAdapter) GetRun(id string) (*RunRecord, error) {
	row, err := s.db.GetRun(id)
	if err != nil {
		return nil, err
	}
	rec := toRecord(*row)
	for _, sr := range row.SeedCounts {
		rec.Detection.Seeds = append(rec.Detection.Seeds, SeedDetection{
			Seed:      sr.Seed,
			Detected:  sr.Detected,
			Simulated: sr.Simulated,
			Matched:   sr.Matched,
		})
	}
	return &rec, nil
}

func (s *storageAdapter) GetPairs(runID string) ([]MatchedEvent, error) {
	rows, err := s.db.GetPairs(runID, "")
	if err != nil {
		return nil, err
	}
	out := make([]MatchedEvent, len(rows))
	for i, r := range rows {
		out[i] = MatchedEvent{
			Seed:       r.Seed,
			EggIndex:   r.EggIndex,
			PitchIndex: r.PitchIdx,
			EggTime:    r.EggTime,
			PitchTime:  r.PitchTime,
			Angle:      r.Angle,
		}
	}
	return out, nil
}

func (s *storageAdapter) DeleteRun(id string) error {
	return s.db.DeleteRun(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

// toRecord converts a run row; per-seed rows are filled by the caller.
func toRecord(r storage.Run) RunRecord {
	return RunRecord{
		ID:        r.ID,
		Mode:      Mode(r.Mode),
		Tolerance: r.Tolerance,
		Bound:     r.Bound,
		SeedCount: r.Seeds,
		CreatedAt: r.CreatedAt,
		Detection: Detection{
			Detected:  r.Detected,
			Simulated: r.Simulated,
			Matched:   r.Matched,
		},
	}
}

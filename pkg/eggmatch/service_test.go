package eggmatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/stablematch"
	"github.com/katydid-analysis/eggmatch/pkg/logger"
)

type fixture struct {
	eggDir, pitchDir, dbPath string
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// newFixture lays out Seed1 (three of four events matched), Seed2 (nothing
// matched), Seed9 with no pitch file and Seed5 with no egg export.
func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		eggDir:   filepath.Join(root, "egg"),
		pitchDir: filepath.Join(root, "pitch"),
		dbPath:   filepath.Join(root, "db", "ledger.sqlite3"),
	}
	require.NoError(t, os.MkdirAll(f.eggDir, 0o755))
	require.NoError(t, os.MkdirAll(f.pitchDir, 0o755))

	writeFile(t, filepath.Join(f.eggDir, "Seed1.csv"), `Group,EventID,StartTimeInAcq,StartFrequency
candidates,0,0.0102,1.1e8
candidates,1,0.0251,1.2e8
candidates,2,0.0400,1.3e8
candidate_tracks,0,0.0102,1.1e8
candidate_tracks,0,0.0125,1.15e8
candidate_tracks,1,0.0251,1.2e8
candidate_tracks,2,0.0400,1.3e8
`)
	writeFile(t, filepath.Join(f.pitchDir, "pitchangles_Seed1.txt"), "0.0100 88.0\n0.0250 89.0\n0.0300 87.5\n0.0401 86.0\n")

	writeFile(t, filepath.Join(f.eggDir, "Seed2.csv"), "Group,EventID,StartTimeInAcq\ncandidates,0,0.5\ncandidate_tracks,0,0.5\n")
	writeFile(t, filepath.Join(f.pitchDir, "pitchangles_Seed2.txt"), "0.2 80\n0.9 81\n")

	writeFile(t, filepath.Join(f.eggDir, "Seed9.csv"), "Group,StartTimeInAcq\ncandidates,0.1\ncandidate_tracks,0.1\n")
	writeFile(t, filepath.Join(f.pitchDir, "pitchangles_Seed5.txt"), "0.1 90\n")
	return f
}

func (f fixture) service(t *testing.T, opts ...Option) Service {
	t.Helper()
	base := []Option{
		WithDataDirs(f.eggDir, f.pitchDir),
		WithDBPath(f.dbPath),
		WithTolerance(5e-4),
		WithLogger(logger.Discard()),
	}
	svc, err := NewService(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestDatasetsPairsSeeds(t *testing.T) {
	svc := newFixture(t).service(t)

	sets, err := svc.Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "Seed1", sets[0].Seed)
	assert.Equal(t, "Seed2", sets[1].Seed)
	assert.Len(t, sets[0].Egg.Candidates, 3)
	assert.Len(t, sets[0].Pitch, 4)
}

func TestDatasetsIgnoreOtherFilesOfSeed(t *testing.T) {
	fx := newFixture(t)
	writeFile(t, filepath.Join(fx.pitchDir, "pitchangles_Seed1_hist.png"), "\x89PNG\r\n")
	writeFile(t, filepath.Join(fx.pitchDir, "Seed2_notes.txt"), "rerun with new field map\n")
	writeFile(t, filepath.Join(fx.eggDir, "Seed1_tracks.png"), "\x89PNG\r\n")
	svc := fx.service(t, WithDBPath(""))

	sets, err := svc.Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, filepath.Join(fx.pitchDir, "pitchangles_Seed1.txt"), sets[0].PitchPath)
	assert.Equal(t, filepath.Join(fx.pitchDir, "pitchangles_Seed2.txt"), sets[1].PitchPath)
	assert.Equal(t, filepath.Join(fx.eggDir, "Seed1.csv"), sets[0].EggPath)
	assert.Len(t, sets[0].Pitch, 4)

	acqs, err := svc.Acquisitions(context.Background(), "Seed1")
	require.NoError(t, err)
	assert.NotEmpty(t, acqs)
}

func TestFilterFirst(t *testing.T) {
	svc := newFixture(t).service(t)
	sets, err := svc.Datasets(context.Background())
	require.NoError(t, err)

	f, err := svc.Filter(context.Background(), sets[0], ModeFirst)
	require.NoError(t, err)

	require.Len(t, f.Matched, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{f.Matched[0].PitchIndex, f.Matched[1].PitchIndex, f.Matched[2].PitchIndex})
	assert.Equal(t, 86.0, f.Matched[2].Angle)
	assert.InDelta(t, 1e-4, f.Matched[2].Diff(), 1e-12)
	assert.Empty(t, f.UnmatchedEggs)
	assert.Equal(t, 3, f.Detected)
	assert.Equal(t, 4, f.Simulated)

	f, err = svc.Filter(context.Background(), sets[1], ModeFirst)
	require.NoError(t, err)
	assert.Empty(t, f.Matched)
	assert.Equal(t, []int{0}, f.UnmatchedEggs)
}

func TestFilterFirstWithIndex(t *testing.T) {
	fx := newFixture(t)
	linear := fx.service(t, WithIndexThreshold(0), WithDBPath(""))
	indexed := fx.service(t, WithIndexThreshold(1), WithDBPath(""))

	sets, err := linear.Datasets(context.Background())
	require.NoError(t, err)
	for _, ds := range sets {
		a, err := linear.Filter(context.Background(), ds, ModeFirst)
		require.NoError(t, err)
		b, err := indexed.Filter(context.Background(), ds, ModeFirst)
		require.NoError(t, err)
		assert.Equal(t, a.Matched, b.Matched, ds.Seed)
	}
}

func TestFilterStable(t *testing.T) {
	svc := newFixture(t).service(t, WithBound(stablematch.Inclusive))
	sets, err := svc.Datasets(context.Background())
	require.NoError(t, err)

	f, err := svc.Filter(context.Background(), sets[0], ModeStable)
	require.NoError(t, err)
	require.Len(t, f.Matched, 3)
	assert.Equal(t, ModeStable, f.Mode)
	assert.Equal(t, 3, f.Matched[2].PitchIndex)
}

func TestDetect(t *testing.T) {
	svc := newFixture(t).service(t)

	det, err := svc.Detect(context.Background())
	require.NoError(t, err)

	require.Len(t, det.Seeds, 2)
	assert.Equal(t, "Seed1: 3/4 events detected (75.00%)", det.Seeds[0].String())
	assert.Equal(t, 4, det.Detected)
	assert.Equal(t, 6, det.Simulated)
	assert.Equal(t, 3, det.Matched)
	assert.InDelta(t, 66.67, det.Efficiency(), 0.01)
}

func TestProcessRecordsRun(t *testing.T) {
	fx := newFixture(t)
	writeFile(t, filepath.Join(fx.eggDir, "Seed3.csv"), "Group,StartTimeInAcq\ncandidates,0.3\n")
	writeFile(t, filepath.Join(fx.pitchDir, "pitchangles_Seed3.txt"), "0.3 85\n")

	svc := fx.service(t, WithQuarantinePolicy(quarantine.Report, true))

	res, err := svc.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Seed3"}, res.Invalid)
	require.Len(t, res.Filtered, 2)
	assert.Equal(t, 3, res.Detection.Matched)
	require.NotEmpty(t, res.RunID)

	runs, err := svc.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].SeedCount)
	assert.Equal(t, "exclusive", runs[0].Bound)

	rec, pairs, err := svc.Run(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, ModeFirst, rec.Mode)
	assert.Equal(t, 5e-4, rec.Tolerance)
	require.Len(t, rec.Detection.Seeds, 2)
	assert.Equal(t, 4, rec.Detection.Seeds[0].Simulated)
	require.Len(t, pairs, 3)
	assert.Equal(t, 88.0, pairs[0].Angle)

	require.NoError(t, svc.DeleteRun(res.RunID))
	runs, err = svc.Runs(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestProcessWithoutRecord(t *testing.T) {
	svc := newFixture(t).service(t, WithRecord(false))

	res, err := svc.Process(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.RunID)

	runs, err := svc.Runs(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLedgerDisabled(t *testing.T) {
	fx := newFixture(t)
	svc, err := NewService(WithDataDirs(fx.eggDir, fx.pitchDir), WithDBPath(""), WithLogger(logger.Discard()))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Runs(0)
	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestHistogram(t *testing.T) {
	svc := newFixture(t).service(t)

	all, err := svc.Histogram(context.Background(), "StartTimeInAcq", 0.01, false)
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total())

	matched, err := svc.Histogram(context.Background(), "StartTimeInAcq", 0.01, true)
	require.NoError(t, err)
	assert.Equal(t, 3, matched.Total())

	freq, err := svc.Histogram(context.Background(), "StartFrequency", 1e7, false)
	require.NoError(t, err)
	assert.Equal(t, 4, freq.Total())
}

func TestAcquisitions(t *testing.T) {
	svc := newFixture(t).service(t, WithAcquisition(0.1, 0.05))

	acqs, err := svc.Acquisitions(context.Background(), "Seed1")
	require.NoError(t, err)
	require.Len(t, acqs, 1)
	assert.InDelta(t, 0.04, acqs[0].End, 1e-12)
	assert.Equal(t, 4, acqs[0].Tracks)
	assert.Equal(t, 3, acqs[0].Events)
	assert.Equal(t, 3, acqs[0].Pitch)

	_, err = svc.Acquisitions(context.Background(), "Seed9")
	assert.ErrorIs(t, err, ErrUnknownSeed)
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(WithLogger(logger.Discard()))
	assert.Error(t, err)

	fx := newFixture(t)
	_, err = NewService(WithDataDirs(fx.eggDir, fx.pitchDir), WithMode("greedy"), WithDBPath(""))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Stable")
	require.NoError(t, err)
	assert.Equal(t, ModeStable, m)

	_, err = ParseMode("nearest")
	assert.Error(t, err)
}

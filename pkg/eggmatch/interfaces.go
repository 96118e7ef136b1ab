package eggmatch

import (
	"context"

	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/stats"
)

type Service interface {
	Datasets(ctx context.Context) ([]Dataset, error)
	Filter(ctx context.Context, ds Dataset, mode Mode) (*Filtered, error)
	Detect(ctx context.Context) (*Detection, error)
	Check(ctx context.Context, policy quarantine.Policy) (*quarantine.Result, error)
	Process(ctx context.Context) (*ProcessResult, error)
	Histogram(ctx context.Context, field string, binwidth float64, filtered bool) (stats.Hist, error)
	Acquisitions(ctx context.Context, seed string) ([]Acquisition, error)
	Runs(limit int) ([]RunRecord, error)
	Run(id string) (*RunRecord, []MatchedEvent, error)
	DeleteRun(id string) error
	Close() error
}

type Storage interface {
	SaveRun(run RunRecord, pairs []MatchedEvent) (string, error)
	ListRuns(limit int) ([]RunRecord, error)
	GetRun(id string) (*RunRecord, error)
	GetPairs(runID string) ([]MatchedEvent, error)
	DeleteRun(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

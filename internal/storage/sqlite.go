// Package storage keeps a ledger of matching runs in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "eggmatch.sqlite3"
const errDBClientNil = "db client is nil"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("storage: run not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Run is one invocation of the filter over a set of seeds.
type Run struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Mode       string       `gorm:"index:idx_run_mode" json:"mode"`
	Tolerance  float64      `json:"tolerance"`
	Bound      string       `json:"bound"`
	Seeds      int          `json:"seeds"`
	Simulated  int          `json:"simulated"`
	Detected   int          `json:"detected"`
	Matched    int          `json:"matched"`
	CreatedAt  time.Time    `gorm:"index:idx_run_created" json:"created_at"`
	SeedCounts []SeedResult `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"seed_results,omitempty"`
}

// SeedResult holds the per-seed totals of a run.
type SeedResult struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"type:varchar(36);uniqueIndex:idx_run_seed,priority:1" json:"run_id"`
	Seed      string `gorm:"uniqueIndex:idx_run_seed,priority:2" json:"seed"`
	Simulated int    `json:"simulated"`
	Detected  int    `json:"detected"`
	Matched   int    `json:"matched"`
}

// MatchedPair is one egg event paired with one simulated pitch-angle event.
type MatchedPair struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	RunID     string  `gorm:"type:varchar(36);index:idx_pair_run_seed,priority:1" json:"run_id"`
	Seed      string  `gorm:"index:idx_pair_run_seed,priority:2" json:"seed"`
	EggIndex  int     `json:"egg_index"`
	PitchIdx  int     `json:"pitch_index"`
	EggTime   float64 `json:"egg_time"`
	PitchTime float64 `json:"pitch_time"`
	Angle     float64 `json:"angle"`
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &SeedResult{}, &MatchedPair{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RecordRun stores run with its seed results and pairs in one transaction.
// An empty run.ID is filled with a fresh UUID; the id is returned.
func (c *DBClient) RecordRun(run Run, seeds []SeedResult, pairs []MatchedPair) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.SeedCounts = nil

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}
		if len(seeds) > 0 {
			rows := make([]SeedResult, len(seeds))
			for i, s := range seeds {
				s.ID = 0
				s.RunID = run.ID
				rows[i] = s
			}
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return fmt.Errorf("batch insert seed results: %w", err)
			}
		}

		batch := make([]MatchedPair, 0, 1000)
		for _, p := range pairs {
			p.ID = 0
			p.RunID = run.ID
			batch = append(batch, p)
			if len(batch) >= 1000 {
				if err := tx.CreateInBatches(batch, 500).Error; err != nil {
					return fmt.Errorf("batch insert pairs: %w", err)
				}
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			if err := tx.CreateInBatches(batch, 500).Error; err != nil {
				return fmt.Errorf("batch insert last pairs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns runs newest first. limit <= 0 means all.
func (c *DBClient) ListRuns(limit int) ([]Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	q := c.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a run with its per-seed results.
func (c *DBClient) GetRun(id string) (*Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var run Run
	err := c.DB.Preload("SeedCounts", func(db *gorm.DB) *gorm.DB {
		return db.Order("seed")
	}).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return &run, nil
}

// GetPairs returns the stored pairs of a run, optionally limited to one seed.
func (c *DBClient) GetPairs(runID, seed string) ([]MatchedPair, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	q := c.DB.Where("run_id = ?", runID)
	if seed != "" {
		q = q.Where("seed = ?", seed)
	}
	var rows []MatchedPair
	if err := q.Order("seed, egg_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying pairs: %w", err)
	}
	return rows, nil
}

// DeleteRun removes a run and everything recorded under it.
func (c *DBClient) DeleteRun(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&MatchedPair{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&SeedResult{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Run{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil
	})
}

// Package store persists batch runs and their per-record results in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cwbudde/algo-peak/internal/batch"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one batch invocation.
type Run struct {
	ID             string `gorm:"primaryKey;size:36"`
	StartedAt      time.Time
	FinishedAt     time.Time
	HalfWindow     float64
	FractionOfApex float64
	MaxExtension   int
	Records        int
	Succeeded      int
	Failed         int
	Fallbacks      int
}

// TableName implements gorm's tabler.
func (Run) TableName() string { return "runs" }

// Result is one record outcome within a run.
type Result struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;size:36"`
	SourceRow  int
	FileName   string
	Molecule   string
	ExpectedRT float64
	Status     string `gorm:"size:32"`
	Error      string

	StartTime     float64
	EndTime       float64
	ApexTime      float64
	ApexIntensity float64
	Baseline      float64
	Threshold     float64
	SignalToNoise float64
	Fallback      bool
}

// TableName implements gorm's tabler.
func (Result) TableName() string { return "peak_results" }

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s failed: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Result{}); err != nil {
		return nil, fmt.Errorf("migrating %s failed: %w", path, err)
	}
	return &Store{db: db}, nil
}

// dsn builds a SQLite URI for path. The path is percent-encoded so that '?',
// '#' and '%' in file names survive URI parsing.
func dsn(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return "file:" + escaped + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores run and its results atomically.
func (s *Store) SaveRun(ctx context.Context, run Run, results []Result) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("saving run %s failed: %w", run.ID, err)
		}
		if len(results) == 0 {
			return nil
		}
		for i := range results {
			results[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(results, 200).Error; err != nil {
			return fmt.Errorf("saving results of run %s failed: %w", run.ID, err)
		}
		return nil
	})
}

// SaveReport stores a finished batch report.
func (s *Store) SaveReport(ctx context.Context, report *batch.Report) error {
	run, results := FromReport(report)
	return s.SaveRun(ctx, run, results)
}

// Run loads a run by ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Runs lists all runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).Order("started_at desc").Find(&runs).Error
	return runs, err
}

// Results lists the results of a run in input order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	var results []Result
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("source_row asc").Find(&results).Error
	return results, err
}

// FromReport converts a batch report into storable rows.
func FromReport(report *batch.Report) (Run, []Result) {
	run := Run{
		ID:             report.RunID.String(),
		StartedAt:      report.Started,
		FinishedAt:     report.Finished,
		HalfWindow:     report.Params.HalfWindow,
		FractionOfApex: report.Params.FractionOfApex,
		MaxExtension:   report.Params.MaxExtension,
		Records:        len(report.Outcomes),
		Succeeded:      report.Succeeded,
		Failed:         report.Failed,
		Fallbacks:      report.Fallbacks,
	}

	results := make([]Result, len(report.Outcomes))
	for i, o := range report.Outcomes {
		r := Result{
			RunID:      run.ID,
			SourceRow:  o.Record.Row,
			FileName:   o.Record.FileName,
			Molecule:   o.Record.Molecule,
			ExpectedRT: o.Record.ExpectedRT,
			Status:     batch.Status(o.Err),
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
		} else {
			r.StartTime = o.Result.Boundary.LeftTime
			r.EndTime = o.Result.Boundary.RightTime
			r.ApexTime = o.Result.Apex.Time
			r.ApexIntensity = o.Result.Apex.Intensity
			r.Baseline = o.Result.Boundary.Baseline
			r.Threshold = o.Result.Boundary.Threshold
			r.SignalToNoise = o.Result.SignalToNoise
			r.Fallback = o.Result.Apex.Fallback
		}
		results[i] = r
	}
	return run, results
}

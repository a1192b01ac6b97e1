// Package history keeps a persisted audit log of successful analyses. It is
// additive only: nothing here feeds back into session display state, and
// report payloads are never stored.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/config"
)

// Store wraps SQLite access for analysis records.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		address TEXT,
		latitude REAL,
		longitude REAL,
		elevation_min REAL,
		elevation_max REAL,
		elevation_avg REAL,
		elevation_change REAL,
		slope_classification TEXT,
		buildability TEXT,
		access_score TEXT,
		report_bytes INTEGER,
		created_at TIMESTAMP
	);`)
	return err
}

// Entry is one recorded analysis.
type Entry struct {
	ID                  string    `json:"id"`
	Address             string    `json:"address"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	ElevationMin        float64   `json:"elevation_min"`
	ElevationMax        float64   `json:"elevation_max"`
	ElevationAvg        float64   `json:"elevation_avg"`
	ElevationChange     float64   `json:"elevation_change"`
	SlopeClassification string    `json:"slope_classification"`
	Buildability        string    `json:"buildability"`
	AccessScore         string    `json:"access_score"`
	ReportBytes         int64     `json:"report_bytes"`
	CreatedAt           time.Time `json:"created_at"`
}

// EntryFrom builds a record from a result. reportBytes is the decoded report
// size, or zero when the response carried no report.
func EntryFrom(r *analyzer.AnalysisResult, reportBytes int64) *Entry {
	return &Entry{
		Address:             r.Address,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		ElevationMin:        r.ElevationMin,
		ElevationMax:        r.ElevationMax,
		ElevationAvg:        r.ElevationAvg,
		ElevationChange:     r.SlopeAnalysis.ElevationChangeMeters,
		SlopeClassification: r.SlopeAnalysis.SlopeClassification,
		Buildability:        r.SlopeAnalysis.BuildabilityAssessment,
		AccessScore:         r.AccessScore.String(),
		ReportBytes:         reportBytes,
	}
}

// Record inserts an entry, assigning an id and timestamp when unset.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = config.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO analyses(
		id, address, latitude, longitude,
		elevation_min, elevation_max, elevation_avg, elevation_change,
		slope_classification, buildability, access_score,
		report_bytes, created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Address, e.Latitude, e.Longitude,
		e.ElevationMin, e.ElevationMax, e.ElevationAvg, e.ElevationChange,
		e.SlopeClassification, e.Buildability, e.AccessScore,
		e.ReportBytes, e.CreatedAt)
	return err
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, address, latitude, longitude,
		elevation_min, elevation_max, elevation_avg, elevation_change,
		slope_classification, buildability, access_score, report_bytes, created_at
		FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Address, &e.Latitude, &e.Longitude,
			&e.ElevationMin, &e.ElevationMax, &e.ElevationAvg, &e.ElevationChange,
			&e.SlopeClassification, &e.Buildability, &e.AccessScore,
			&e.ReportBytes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Health returns err if the DB is not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}

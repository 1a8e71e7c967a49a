// Package history persists evaluation runs in a local SQLite database so
// past metrics tables can be listed and re-read from the CLI.
package history

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/terralens/spatialval/internal/eval"
)

// Run is one recorded batch evaluation.
type Run struct {
	ID            string
	CreatedAt     time.Time
	TargetClass   string
	PolygonSource string
	Metrics       eval.MetricsTable
}

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	target_class   TEXT NOT NULL,
	polygon_source TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_metrics (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	layer            TEXT NOT NULL,
	ua               REAL,
	pa               REAL,
	f1               REAL,
	scr              REAL,
	inside_m2        REAL NOT NULL,
	outside_m2       REAL NOT NULL,
	pct_in_polygon   REAL NOT NULL,
	n_pixels_inside  INTEGER NOT NULL,
	n_pixels_outside INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// Open opens (creating if needed) the run history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// metricToNull maps undefined metrics to SQL NULL; SQLite has no NaN.
func metricToNull(m eval.Metric) sql.NullFloat64 {
	if !m.Defined() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: m.Value(), Valid: true}
}

func nullToMetric(n sql.NullFloat64) eval.Metric {
	if !n.Valid {
		return eval.Metric(math.NaN())
	}
	return eval.Metric(n.Float64)
}

// SaveRun records a run and its metrics rows, preserving layer order via the
// position column. Returns the generated run id.
func (s *Store) SaveRun(targetClass, polygonSource string, table eval.MetricsTable) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, created_at, target_class, polygon_source) VALUES (?, ?, ?, ?)`,
		id, now, targetClass, polygonSource,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_metrics
		(run_id, position, layer, ua, pa, f1, scr, inside_m2, outside_m2, pct_in_polygon, n_pixels_inside, n_pixels_outside)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare metrics insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range table {
		if _, err := stmt.Exec(id, i, m.Layer,
			metricToNull(m.UA), metricToNull(m.PA), metricToNull(m.F1), metricToNull(m.SCR),
			m.AreaInsideM2, m.AreaOutsideM2, m.PercentInPolygon,
			m.PixelsInside, m.PixelsOutside,
		); err != nil {
			return "", fmt.Errorf("failed to insert metrics row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns run headers (no metrics), most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, target_class, polygon_source FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.TargetClass, &r.PolygonSource); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
		}
		r.CreatedAt = ts
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its metrics table in original layer order.
func (s *Store) GetRun(id string) (*Run, error) {
	r := &Run{ID: id}
	var created string
	err := s.db.QueryRow(
		`SELECT created_at, target_class, polygon_source FROM runs WHERE id = ?`, id,
	).Scan(&created, &r.TargetClass, &r.PolygonSource)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad created_at %q: %w", id, created, err)
	}
	r.CreatedAt = ts

	rows, err := s.db.Query(`SELECT layer, ua, pa, f1, scr, inside_m2, outside_m2,
		pct_in_polygon, n_pixels_inside, n_pixels_outside
		FROM run_metrics WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read run metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m eval.LayerMetrics
		var ua, pa, f1, scr sql.NullFloat64
		if err := rows.Scan(&m.Layer, &ua, &pa, &f1, &scr,
			&m.AreaInsideM2, &m.AreaOutsideM2, &m.PercentInPolygon,
			&m.PixelsInside, &m.PixelsOutside); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		m.UA, m.PA, m.F1, m.SCR = nullToMetric(ua), nullToMetric(pa), nullToMetric(f1), nullToMetric(scr)
		r.Metrics = append(r.Metrics, m)
	}
	return r, rows.Err()
}

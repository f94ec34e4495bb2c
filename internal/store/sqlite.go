package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// RunStore records simulation runs and their tick metrics in SQLite.
// It is safe for concurrent use.
type RunStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the run database at path, creating parent
// directories as needed.
func Open(path string) (*RunStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *RunStore) Path() string {
	return s.path
}

// CreateRun registers a new run and returns its generated id. The run starts
// in status "running"; a zero StartedAt defaults to now.
func (s *RunStore) CreateRun(ctx context.Context, meta RunMeta) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	started := meta.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, topology, neurons, ticks, seed, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, meta.Name, meta.Topology, meta.Neurons, meta.Ticks, int64(meta.Seed),
		StatusRunning, started.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	return id, nil
}

// FinishRun marks a run with its final status and stamps the end time.
func (s *RunStore) FinishRun(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finish result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// AppendTicks appends a batch of tick metrics to a run in one transaction.
func (s *RunStore) AppendTicks(ctx context.Context, runID string, batch []TickMetrics) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tick_metrics
		(run_id, tick, target_firing, target_energy, target_priority,
		 total_firing, avg_energy, avg_novelty, alert_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range batch {
		if _, err := stmt.ExecContext(ctx, runID, m.Tick, boolToInt(m.TargetFiring),
			m.TargetEnergy, m.TargetPriority, m.TotalFiring, m.AvgEnergy,
			m.AvgNovelty, m.AlertLevel); err != nil {
			return fmt.Errorf("failed to insert tick %d: %w", m.Tick, err)
		}
	}

	return tx.Commit()
}

// TickSeries returns the full metric series of a run in tick order.
func (s *RunStore) TickSeries(ctx context.Context, runID string) ([]TickMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, target_firing, target_energy, target_priority,
		       total_firing, avg_energy, avg_novelty, alert_level
		FROM tick_metrics WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tick series: %w", err)
	}
	defer rows.Close()

	var series []TickMetrics
	for rows.Next() {
		var m TickMetrics
		var firing int
		if err := rows.Scan(&m.Tick, &firing, &m.TargetEnergy, &m.TargetPriority,
			&m.TotalFiring, &m.AvgEnergy, &m.AvgNovelty, &m.AlertLevel); err != nil {
			return nil, fmt.Errorf("failed to scan tick row: %w", err)
		}
		m.TargetFiring = firing != 0
		series = append(series, m)
	}

	return series, rows.Err()
}

// Run returns the metadata of a single run.
func (s *RunStore) Run(ctx context.Context, id string) (RunMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, topology, neurons, ticks, seed, status, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunMeta{}, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return RunMeta{}, fmt.Errorf("failed to load run: %w", err)
	}
	return meta, nil
}

// Runs returns all recorded runs, newest first.
func (s *RunStore) Runs(ctx context.Context) ([]RunMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, topology, neurons, ticks, seed, status, started_at, finished_at
		FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunMeta, error) {
	var meta RunMeta
	var seed int64
	var started string
	var finished sql.NullString

	if err := row.Scan(&meta.ID, &meta.Name, &meta.Topology, &meta.Neurons,
		&meta.Ticks, &seed, &meta.Status, &started, &finished); err != nil {
		return RunMeta{}, err
	}

	meta.Seed = uint64(seed)
	if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		meta.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			meta.FinishedAt = t
		}
	}
	return meta, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store keeps an append-only SQLite ledger of sensitivity sweeps so an
// interrupted sweep can be resumed and finished sweeps can be listed later.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/domain"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const sqliteDialect = "sqlite3"

// Sweep status values
const (
	StatusRunning     = "running"
	StatusComplete    = "complete"
	StatusInterrupted = "interrupted"
)

// ErrNotFound is returned when a sweep id does not exist
var ErrNotFound = errors.New("sweep not found")

// Sweep is one recorded sensitivity sweep. Entries and Failures are only
// populated by GetSweep.
type Sweep struct {
	ID                 int64                       `json:"id"`
	CreatedAt          time.Time                   `json:"createdAt"`
	InputHash          string                      `json:"inputHash"`
	DeltaFraction      float64                     `json:"deltaFraction"`
	BaselineLCOE       float64                     `json:"baselineLcoe"`
	Status             string                      `json:"status"`
	ParametersAnalyzed int                         `json:"parametersAnalyzed"`
	SkippedZero        int                         `json:"skippedZero"`
	Entries            []domain.SensitivityEntry   `json:"entries,omitempty"`
	Failures           []domain.SensitivityFailure `json:"failures,omitempty"`
}

// Result rebuilds a ranked SensitivityResult from the stored rows, keeping
// the topN highest |elasticity| entries (all when topN < 0)
func (s *Sweep) Result(topN int) *domain.SensitivityResult {
	entries := append([]domain.SensitivityEntry(nil), s.Entries...)
	calculation.RankSensitivity(entries)
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return &domain.SensitivityResult{
		DeltaFraction:      s.DeltaFraction,
		BaselineLCOE:       s.BaselineLCOE,
		ParametersAnalyzed: s.ParametersAnalyzed,
		Entries:            entries,
		Failures:           append([]domain.SensitivityFailure(nil), s.Failures...),
		Interrupted:        s.Status != StatusComplete,
	}
}

// Store is the sweep ledger
type Store struct {
	db  *sql.DB
	log calculation.Logger
}

// Open opens (creating if needed) the SQLite ledger at path and migrates it
// to the latest schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping sqlite database: %w", err), db.Close())
	}
	if err := migrate(ctx, db); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, log: calculation.NopLogger{}}, nil
}

// dsn applies the pragmas on every pooled connection
func dsn(path string) string {
	v := url.Values{}
	v.Add("_pragma", "journal_mode(WAL)")
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "busy_timeout(5000)")
	v.Set("_time_format", "sqlite")
	return path + "?" + v.Encode()
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// SetLogger sets the logger used for ledger diagnostics
func (s *Store) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	s.log = l
}

// Close checkpoints the WAL and closes the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
	return multierr.Append(err, s.db.Close())
}

// InputHash fingerprints an input model so a sweep can be matched to the
// design it was run on
func InputHash(in *domain.Inputs) (string, error) {
	if in == nil {
		return "", fmt.Errorf("no input model to hash")
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal input model: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CreateSweep starts a new running sweep and returns its id
func (s *Store) CreateSweep(ctx context.Context, inputHash string, delta, baselineLCOE float64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sweeps (created_at, input_hash, delta_fraction, baseline_lcoe, status) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), inputHash, delta, baselineLCOE, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("insert sweep: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sweep id: %w", err)
	}
	s.log.Debugf("created sweep %d for input %s", id, shortHash(inputHash))
	return id, nil
}

// FinishSweep stamps the sweep with its final status and counts. An
// interrupted result leaves the sweep resumable.
func (s *Store) FinishSweep(ctx context.Context, id int64, res *domain.SensitivityResult) error {
	if res == nil {
		return fmt.Errorf("finish sweep %d: no result", id)
	}
	status := StatusComplete
	if res.Interrupted {
		status = StatusInterrupted
	}
	out, err := s.db.ExecContext(ctx, `
		UPDATE sweeps
		SET status = ?, baseline_lcoe = ?,
		    parameters_analyzed = MAX(parameters_analyzed, ?),
		    skipped_zero = ?
		WHERE id = ?`,
		status, res.BaselineLCOE, res.ParametersAnalyzed, len(res.SkippedZero), id)
	if err != nil {
		return fmt.Errorf("finish sweep %d: %w", id, err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("finish sweep %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListSweeps returns every sweep, newest first, without entries
func (s *Store) ListSweeps(ctx context.Context) ([]Sweep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, input_hash, delta_fraction, baseline_lcoe, status, parameters_analyzed, skipped_zero
		FROM sweeps ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []Sweep
	for rows.Next() {
		sw, err := scanSweep(rows)
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, *sw)
	}
	return sweeps, rows.Err()
}

// GetSweep loads one sweep with all of its recorded entries and failures
func (s *Store) GetSweep(ctx context.Context, id int64) (*Sweep, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, input_hash, delta_fraction, baseline_lcoe, status, parameters_analyzed, skipped_zero
		FROM sweeps WHERE id = ?`, id)
	sw, err := scanSweep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sweep %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if sw.Entries, err = s.entries(ctx, id); err != nil {
		return nil, err
	}
	if sw.Failures, err = s.failures(ctx, id); err != nil {
		return nil, err
	}
	return sw, nil
}

// LatestResumable finds the newest unfinished sweep of the same input and
// step, or nil when there is none
func (s *Store) LatestResumable(ctx context.Context, inputHash string, delta float64) (*Sweep, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM sweeps
		WHERE input_hash = ? AND delta_fraction = ? AND status != ?
		ORDER BY id DESC LIMIT 1`, inputHash, delta, StatusComplete).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find resumable sweep: %w", err)
	}
	return s.GetSweep(ctx, id)
}

// RecordedPaths lists every parameter path that already has an entry or a
// failure in the sweep
func (s *Store) RecordedPaths(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM sweep_entries WHERE sweep_id = ?
		UNION
		SELECT path FROM sweep_failures WHERE sweep_id = ?
		ORDER BY path`, id, id)
	if err != nil {
		return nil, fmt.Errorf("recorded paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) entries(ctx context.Context, id int64) ([]domain.SensitivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, display_name, baseline_value, perturbed_lcoe, derivative, elasticity
		FROM sweep_entries WHERE sweep_id = ? ORDER BY path`, id)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var out []domain.SensitivityEntry
	for rows.Next() {
		var e domain.SensitivityEntry
		if err := rows.Scan(&e.Path, &e.DisplayName, &e.BaselineValue, &e.PerturbedLCOE, &e.Derivative, &e.Elasticity); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) failures(ctx context.Context, id int64) ([]domain.SensitivityFailure, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, error FROM sweep_failures WHERE sweep_id = ? ORDER BY path`, id)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	var out []domain.SensitivityFailure
	for rows.Next() {
		var f domain.SensitivityFailure
		if err := rows.Scan(&f.Path, &f.Error); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSweep(row scanner) (*Sweep, error) {
	var sw Sweep
	if err := row.Scan(&sw.ID, &sw.CreatedAt, &sw.InputHash, &sw.DeltaFraction, &sw.BaselineLCOE,
		&sw.Status, &sw.ParametersAnalyzed, &sw.SkippedZero); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sweep: %w", err)
	}
	return &sw, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

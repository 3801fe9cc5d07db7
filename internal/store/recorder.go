package store

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/domain"
)

// Recorder appends the outcomes of one sweep to the ledger as they complete
type Recorder struct {
	store   *Store
	sweepID int64
}

var _ calculation.SweepRecorder = (*Recorder)(nil)

// Recorder returns a SweepRecorder bound to sweepID
func (s *Store) Recorder(sweepID int64) *Recorder {
	return &Recorder{store: s, sweepID: sweepID}
}

// SweepID is the ledger id this recorder writes to
func (r *Recorder) SweepID() int64 { return r.sweepID }

// RecordEntry implements calculation.SweepRecorder. A path that already has an
// entry keeps its first value.
func (r *Recorder) RecordEntry(ctx context.Context, e domain.SensitivityEntry) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO sweep_entries (sweep_id, path, display_name, baseline_value, perturbed_lcoe, derivative, elasticity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sweep_id, path) DO NOTHING`,
		r.sweepID, e.Path, e.DisplayName, e.BaselineValue, e.PerturbedLCOE, e.Derivative, e.Elasticity)
	if err != nil {
		return fmt.Errorf("record entry %s: %w", e.Path, err)
	}
	return nil
}

// RecordFailure implements calculation.SweepRecorder
func (r *Recorder) RecordFailure(ctx context.Context, f domain.SensitivityFailure) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO sweep_failures (sweep_id, path, error)
		VALUES (?, ?, ?)
		ON CONFLICT (sweep_id, path) DO NOTHING`,
		r.sweepID, f.Path, f.Error)
	if err != nil {
		return fmt.Errorf("record failure %s: %w", f.Path, err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/domain"
	"go.uber.org/multierr"
)

// StatusFailed marks a sweep whose baseline could not be evaluated
const StatusFailed = "failed"

// SweepRun is the outcome of RunSweep
type SweepRun struct {
	SweepID int64
	Resumed bool
	Skipped int // paths already in the ledger when the run started
	Result  *domain.SensitivityResult
}

// RunSweep runs sa over in and appends every outcome to the ledger. When
// resume is set, the newest unfinished sweep of the same input and step is
// continued and only the parameters it has not recorded are measured. The
// returned result is ranked over every entry in the ledger for the sweep.
func (s *Store) RunSweep(ctx context.Context, sa *calculation.SensitivityAnalyzer, in *domain.Inputs, opts domain.SensitivityOptions, resume bool) (*SweepRun, error) {
	hash, err := InputHash(in)
	if err != nil {
		return nil, err
	}
	if opts.Step <= 0 {
		opts.Step = domain.DefaultSensitivityStep
	}
	topN := opts.TopN
	if topN == 0 {
		topN = domain.DefaultSensitivityTopN
	}

	run := &SweepRun{}
	if resume {
		prev, err := s.LatestResumable(ctx, hash, opts.Step)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			paths, err := s.RecordedPaths(ctx, prev.ID)
			if err != nil {
				return nil, err
			}
			run.SweepID, run.Resumed, run.Skipped = prev.ID, true, len(paths)
			opts.Skip = append(opts.Skip, paths...)
			s.log.Infof("resuming sweep %d (%d parameters already recorded)", prev.ID, len(paths))
		}
	}
	if run.SweepID == 0 {
		if run.SweepID, err = s.CreateSweep(ctx, hash, opts.Step, 0); err != nil {
			return nil, err
		}
	}

	analyzer := *sa
	analyzer.Recorder = s.Recorder(run.SweepID)
	// the ledger ranks the merged entries itself
	opts.TopN = -1
	res, runErr := analyzer.Analyze(ctx, in, opts)
	if res == nil {
		if err := s.setStatus(context.WithoutCancel(ctx), run.SweepID, StatusFailed); err != nil {
			runErr = multierr.Append(runErr, err)
		}
		return nil, runErr
	}

	if err := s.FinishSweep(context.WithoutCancel(ctx), run.SweepID, res); err != nil {
		return nil, multierr.Append(runErr, err)
	}
	sw, err := s.GetSweep(context.WithoutCancel(ctx), run.SweepID)
	if err != nil {
		return nil, multierr.Append(runErr, err)
	}
	run.Result = sw.Result(topN)
	run.Result.SkippedZero = res.SkippedZero
	return run, runErr
}

func (s *Store) setStatus(ctx context.Context, id int64, status string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sweeps SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("set sweep %d status: %w", id, err)
	}
	return nil
}

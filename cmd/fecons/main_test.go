package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/fecons/internal/breakeven"
	"github.com/rgehrsitz/fecons/internal/compare"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/store"
)

const (
	catfInput    = "../../testdata/catf_mfe.yaml"
	ifeInput     = "../../testdata/ife_laser.yaml"
	invalidInput = "../../testdata/invalid.yaml"
)

// execute runs a fresh command tree and returns stdout, stderr and the error
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "fecons", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{"calculate", "validate", "sensitivity", "compare", "serve", "explore", "sweeps", "break-even", "version"}
	cmd := newRootCmd()
	for _, name := range expected {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"log-level", "log-format", "quiet", "constants", "workers"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := execute(t, "no-such-command")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fecons ")
	assert.Contains(t, stdout, "commit")

	_, _, err = execute(t, "version", "extra")
	assert.Error(t, err)

	for _, c := range newRootCmd().Commands() {
		if c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		assert.Nil(t, c.Run, "%s should use RunE", c.Name())
	}
}

func TestCalculate(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "calculate", catfInput, "--format", "json", "--quiet")
		require.NoError(t, err)

		var res domain.EconomicsResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "CATF spherical tokamak", res.Name)
		assert.Greater(t, res.LCOE, 0.0)
		assert.NotNil(t, res.Account("CAS90"))
	})

	t.Run("console", func(t *testing.T) {
		stdout, _, err := execute(t, "calculate", ifeInput, "-q")
		require.NoError(t, err)
		assert.Contains(t, stdout, "LCOE")
		assert.Contains(t, stdout, "CAS22")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "calculate", catfInput, "--format", "pdf", "-q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format")
	})

	t.Run("invalid input", func(t *testing.T) {
		_, _, err := execute(t, "calculate", invalidInput, "-q")
		var verr *config.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.NotEmpty(t, verr.Errors)
	})

	t.Run("output dir", func(t *testing.T) {
		dir := t.TempDir()
		stdout, _, err := execute(t, "calculate", catfInput, "--format", "csv", "--output-dir", dir, "-q")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Report written to")

		files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})
}

func TestCalculateWithConstantsOverride(t *testing.T) {
	stdout, _, err := execute(t, "calculate", catfInput, "--format", "json", "-q")
	require.NoError(t, err)
	var base domain.EconomicsResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &base))

	path := filepath.Join(t.TempDir(), "constants.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site_permits: 500\n"), 0o644))

	stdout, _, err = execute(t, "calculate", catfInput, "--format", "json", "-q", "--constants", path)
	require.NoError(t, err)
	var bumped domain.EconomicsResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &bumped))
	assert.Greater(t, bumped.LCOE, base.LCOE)

	_, _, err = execute(t, "calculate", catfInput, "-q", "--constants", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	stdout, _, err := execute(t, "validate", catfInput)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")

	stdout, _, err = execute(t, "validate", invalidInput)
	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, stdout, "basic.p_nrl")
	assert.Contains(t, stdout, "basic.plant_availability")

	stdout, _, err = execute(t, "validate", invalidInput, "--format", "json")
	require.Error(t, err)
	var report config.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, verr.Errors, report.Errors)

	_, _, err = execute(t, "validate", "no-such-file.yaml")
	assert.Error(t, err)
}

func TestSensitivity(t *testing.T) {
	stdout, _, err := execute(t, "sensitivity", catfInput, "--top", "3", "--format", "json", "-q")
	require.NoError(t, err)

	var res domain.SensitivityResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Len(t, res.Entries, 3)
	assert.InDelta(t, domain.DefaultSensitivityStep, res.DeltaFraction, 1e-12)
	assert.Greater(t, res.ParametersAnalyzed, 3)
	assert.False(t, res.Interrupted)

	stdout, _, err = execute(t, "sensitivity", catfInput, "--top", "2", "--workers", "4", "--format", "json", "-q")
	require.NoError(t, err)
	var parallel domain.SensitivityResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &parallel))
	require.Len(t, parallel.Entries, 2)
	assert.Equal(t, res.Entries[0].Path, parallel.Entries[0].Path)
	assert.Equal(t, res.Entries[1].Path, parallel.Entries[1].Path)
}

func TestSensitivityFlagErrors(t *testing.T) {
	_, _, err := execute(t, "sensitivity", catfInput, "--resume", "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db")

	_, _, err = execute(t, "sensitivity", catfInput, "--step", "1.5", "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--step")
}

func TestSensitivityLedgerAndSweeps(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	stdout, _, err := execute(t, "sensitivity", ifeInput, "--db", db, "--top", "4", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "LCOE SENSITIVITY ANALYSIS")

	stdout, _, err = execute(t, "sweeps", "list", "--db", db, "--format", "json", "-q")
	require.NoError(t, err)
	var sweeps []store.Sweep
	require.NoError(t, json.Unmarshal([]byte(stdout), &sweeps))
	require.Len(t, sweeps, 1)
	assert.Equal(t, store.StatusComplete, sweeps[0].Status)

	stdout, _, err = execute(t, "sweeps", "list", "--db", db, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "complete")

	stdout, _, err = execute(t, "sweeps", "show", "1", "--db", db, "--top", "2", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sweep 1")
	assert.Contains(t, stdout, "LCOE SENSITIVITY ANALYSIS")

	// nothing left to resume, so a second sweep is recorded
	_, _, err = execute(t, "sensitivity", ifeInput, "--db", db, "--resume", "-q")
	require.NoError(t, err)
	stdout, _, err = execute(t, "sweeps", "list", "--db", db, "--format", "json", "-q")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &sweeps))
	assert.Len(t, sweeps, 2)

	_, _, err = execute(t, "sweeps", "show", "99", "--db", db, "-q")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = execute(t, "sweeps", "show", "abc", "--db", db, "-q")
	assert.Error(t, err)

	_, _, err = execute(t, "sweeps", "list", "--db", filepath.Join(t.TempDir(), "missing.db"), "-q")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	stdout, _, err := execute(t, "compare", catfInput, "--opposite-maturity", "--format", "json", "-q")
	require.NoError(t, err)

	var set compare.ComparisonSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &set))
	require.NotNil(t, set.BaseResult)
	require.Len(t, set.AlternativeResults, 1)
	assert.NotEqual(t, set.BaseResult.Variant.NOAK, set.AlternativeResults[0].Variant.NOAK)
	assert.Equal(t, "catf_mfe.yaml", set.ConfigPath)

	stdout, _, err = execute(t, "compare", catfInput, "--fuels", "dd", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FUSION PLANT DESIGN COMPARISON")

	_, _, err = execute(t, "compare", catfInput, "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to compare")

	_, _, err = execute(t, "compare", catfInput, "--fuels", "dd", "--format", "xml", "-q")
	assert.Error(t, err)

	_, _, err = execute(t, "compare", catfInput, "--fuels", "antimatter", "-q")
	assert.Error(t, err)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newSlogLogger(&buf, "warn", "text")
	log.Infof("hidden %d", 1)
	log.Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	log = newSlogLogger(&buf, "debug", "json")
	log.Debugf("detail")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "detail", line["msg"])
}

func TestLogsGoToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constants.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site_permits: 10\n"), 0o644))

	stdout, stderr, err := execute(t, "calculate", catfInput, "--format", "json", "--constants", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "using costing constants")
	assert.NotContains(t, stdout, "using costing constants")

	_, stderr, err = execute(t, "calculate", catfInput, "--format", "json", "--constants", path, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("FECONS_ADDR", "127.0.0.1:9999")
	t.Setenv("FECONS_MAX_BODY_BYTES", "2048")
	t.Setenv("FECONS_LOG_LEVEL", "debug")
	cmd := newRootCmd()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", serve.Flags().Lookup("addr").DefValue)
	assert.Equal(t, "2048", serve.Flags().Lookup("max-body").DefValue)
	assert.Equal(t, "debug", cmd.PersistentFlags().Lookup("log-level").DefValue)

	t.Setenv("FECONS_MAX_BODY_BYTES", "lots")
	assert.Equal(t, int64(7), envInt64("FECONS_MAX_BODY_BYTES", 7))
}

func TestReportExtension(t *testing.T) {
	tests := map[string]string{
		"json":         "json",
		"csv":          "csv",
		"detailed-csv": "csv",
		"html":         "html",
		"console":      "txt",
	}
	for name, want := range tests {
		assert.Equal(t, want, reportExtension(name), name)
	}
}

func TestBreakEven(t *testing.T) {
	stdout, _, err := execute(t, "calculate", catfInput, "--format", "json", "-q")
	require.NoError(t, err)
	var base domain.EconomicsResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &base))
	target := strconv.FormatFloat(base.LCOE*0.97, 'f', 4, 64)

	stdout, _, err = execute(t, "break-even", catfInput, "--target-lcoe", target, "--param", "basic.p_nrl", "--format", "json", "-q")
	require.NoError(t, err)
	var res breakeven.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "basic.p_nrl", res.Path)
	assert.True(t, res.Converged)
	assert.Greater(t, res.Value, res.BaselineValue)
	assert.InDelta(t, base.LCOE*0.97, res.LCOE, 0.011)

	stdout, _, err = execute(t, "break-even", catfInput, "--target-lcoe", target,
		"--param", "basic.p_nrl", "--param", "financial.interest_rate", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "BREAK-EVEN LEVERS")

	t.Run("errors", func(t *testing.T) {
		_, _, err := execute(t, "break-even", catfInput, "-q")
		assert.Error(t, err)

		_, _, err = execute(t, "break-even", catfInput, "--target-lcoe", "-3", "-q")
		assert.Error(t, err)

		_, _, err = execute(t, "break-even", catfInput, "--target-lcoe", target, "--max", "5000", "-q")
		assert.ErrorContains(t, err, "exactly one --param")

		_, _, err = execute(t, "break-even", catfInput, "--target-lcoe", "1", "--param", "basic.p_nrl", "-q")
		assert.ErrorIs(t, err, breakeven.ErrNotBracketed)

		_, _, err = execute(t, "break-even", catfInput, "--target-lcoe", target, "--param", "basic.p_nrl", "--format", "xml", "-q")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

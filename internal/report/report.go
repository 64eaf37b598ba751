// Package report assembles a scheduler's raw results into the
// spec §3 RunResult shape — the value report writers (JSON, JUnit-XML,
// HTML; out of scope here) consume — plus the pre-flight RunnerError.
// It does not touch the trend database; cmd/sentinel records per-test
// statuses there via internal/store.
package report

import (
	"fmt"
	"time"

	"github.com/mateoblack/sentinel/internal/execution"
)

// Summary counts every TestResult by terminal status, spec §3 "summary
// counts are consistent with results".
type Summary struct {
	Total           int   `json:"total"`
	Passed          int   `json:"passed"`
	Failed          int   `json:"failed"`
	Skipped         int   `json:"skipped"`
	PassedWithRetry int   `json:"passedWithRetry"`
	DurationMs      int64 `json:"duration"`
}

// Run is the full spec §3 RunResult: runId, timestamps, the config the
// run executed under, every TestResult, and a summary derived from them.
type Run struct {
	RunID       string                 `json:"runId"`
	StartedAt   time.Time              `json:"startedAt"`
	CompletedAt time.Time              `json:"completedAt"`
	Config      execution.RunnerConfig `json:"config"`
	Results     []execution.TestResult `json:"results"`
	Summary     Summary                `json:"summary"`
}

// Build assembles a Run from a scheduler's raw results. summary.total
// always equals len(results), and the per-status counts partition it
// exactly: every result has exactly one of the four statuses.
func Build(runID string, startedAt, completedAt time.Time, config execution.RunnerConfig, results []execution.TestResult) Run {
	summary := Summary{
		Total:      len(results),
		DurationMs: completedAt.Sub(startedAt).Milliseconds(),
	}
	for _, r := range results {
		switch r.Status {
		case execution.StatusPassed:
			summary.Passed++
		case execution.StatusFailed:
			summary.Failed++
		case execution.StatusSkipped:
			summary.Skipped++
		case execution.StatusPassedWithRetry:
			summary.PassedWithRetry++
		}
	}

	return Run{
		RunID:       runID,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Config:      config,
		Results:     results,
		Summary:     summary,
	}
}

// ErrorCode discriminates a pre-flight RunnerError, spec §7.
type ErrorCode string

const (
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrNoTestsFound  ErrorCode = "NO_TESTS_FOUND"
)

// RunnerError is the tagged pre-flight failure the run command returns
// instead of a Run, before any worker is spawned.
type RunnerError struct {
	Code    ErrorCode
	Message string
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

package report

import (
	"testing"
	"time"

	"github.com/mateoblack/sentinel/internal/execution"
)

func TestBuildSummaryPartitionsResults(t *testing.T) {
	started := time.Now()
	completed := started.Add(2500 * time.Millisecond)

	results := []execution.TestResult{
		{TestID: "a", Status: execution.StatusPassed},
		{TestID: "b", Status: execution.StatusFailed},
		{TestID: "c", Status: execution.StatusPassedWithRetry},
		{TestID: "d", Status: execution.StatusSkipped},
	}

	run := Build("run-1", started, completed, execution.RunnerConfig{}, results)

	if run.Summary.Total != len(results) {
		t.Fatalf("Summary.Total = %d, want %d", run.Summary.Total, len(results))
	}
	sum := run.Summary.Passed + run.Summary.Failed + run.Summary.Skipped + run.Summary.PassedWithRetry
	if sum != run.Summary.Total {
		t.Fatalf("status counts sum to %d, want %d", sum, run.Summary.Total)
	}
	if run.Summary.Passed != 1 || run.Summary.Failed != 1 || run.Summary.Skipped != 1 || run.Summary.PassedWithRetry != 1 {
		t.Fatalf("Summary = %+v, want one of each status", run.Summary)
	}
	if run.Summary.DurationMs != 2500 {
		t.Fatalf("Summary.DurationMs = %d, want 2500", run.Summary.DurationMs)
	}
}

func TestBuildEmptyResults(t *testing.T) {
	now := time.Now()
	run := Build("run-2", now, now, execution.RunnerConfig{}, nil)
	if run.Summary.Total != 0 {
		t.Fatalf("Summary.Total = %d, want 0", run.Summary.Total)
	}
}

func TestRunnerErrorMessage(t *testing.T) {
	err := &RunnerError{Code: ErrNoTestsFound, Message: "no cases in suite.json"}
	want := "NO_TESTS_FOUND: no cases in suite.json"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

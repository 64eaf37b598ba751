package execution

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mateoblack/sentinel/internal/driver"
)

// Execute runs tc to completion against page, spec §4.11. consoleErrors
// and failedRequests are the accumulators the worker process owns for
// the lifetime of the browser; Execute reads consoleErrors for artifact
// capture and carries failedRequests through for future network-aware
// assertion types, but neither is reset here.
func Execute(ctx context.Context, tc TestCase, cfg RunnerConfig, drv driver.Driver, page driver.Page, consoleErrors []string, failedRequests []FailedRequest) TestResult {
	start := time.Now()
	result := TestResult{TestID: tc.ID, Name: tc.Name, Suite: tc.Suite}

	fail := func(err error, details *AssertionDetails) TestResult {
		result.Status = StatusFailed
		result.Error = &TestError{Message: err.Error(), AssertionDetails: details}
		result.DurationMs = time.Since(start).Milliseconds()

		if artifacts, captureErr := CollectArtifacts(ctx, drv, page, cfg.OutputDir, tc.Suite, tc.ID, consoleErrors); captureErr == nil {
			result.ScreenshotPath = artifacts.ScreenshotPath
			result.LogPath = artifacts.LogPath
			result.ArtifactDir = artifacts.ArtifactDir
		}
		return result
	}

	if tc.BaseURL != "" {
		if err := drv.Navigate(ctx, page, tc.BaseURL, driver.NavigateOptions{Timeout: cfg.NavigationTimeout}); err != nil {
			return fail(fmt.Errorf("navigating to base URL: %w", err), nil)
		}
	}

	for _, phase := range [][]TestStep{tc.Setup, tc.Steps, tc.Teardown} {
		for _, step := range phase {
			if err := runStep(ctx, drv, page, step, cfg); err != nil {
				return fail(err, nil)
			}
			for _, assertion := range step.Assertions {
				details, err := evaluateAssertion(ctx, drv, page, assertion, cfg)
				if err != nil {
					return fail(fmt.Errorf("assertion %s on %q failed", assertion.Type, assertion.Selector), &details)
				}
			}
		}
	}

	result.Status = StatusPassed
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

func runStep(ctx context.Context, drv driver.Driver, page driver.Page, step TestStep, cfg RunnerConfig) error {
	switch step.Action {
	case ActionClick, ActionFormSubmit:
		if err := drv.Click(ctx, page, step.Selector); err != nil {
			return fmt.Errorf("clicking %q: %w", step.Selector, err)
		}
	case ActionNavigation:
		if err := drv.Navigate(ctx, page, step.Selector, driver.NavigateOptions{Timeout: cfg.NavigationTimeout}); err != nil {
			return fmt.Errorf("navigating to %q: %w", step.Selector, err)
		}
	default:
		// Unknown actions are a documented no-op, spec §4.11 step 3.
	}
	return nil
}

// evaluateAssertion returns a zero-value AssertionDetails and a nil
// error when the assertion passes; on failure it returns the details
// needed to populate TestError.AssertionDetails alongside a non-nil
// error, so the caller can treat "err != nil" as the single failure
// signal.
func evaluateAssertion(ctx context.Context, drv driver.Driver, page driver.Page, a TestAssertion, cfg RunnerConfig) (AssertionDetails, error) {
	waitTimeout := cfg.AssertionWaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = DefaultAssertionWaitTimeout
	}

	var actual string
	switch a.Type {
	case AssertionVisibility:
		present, err := drv.WaitForSelector(ctx, page, a.Selector, driver.WaitOptions{Timeout: waitTimeout})
		if err != nil {
			present = false
		}
		actual = strconv.FormatBool(present)

	case AssertionTextContent:
		script := fmt.Sprintf("document.querySelector(%q)?.textContent ?? \"\"", a.Selector)
		_ = drv.Evaluate(ctx, page, script, &actual)

	case AssertionURLMatch:
		url, err := drv.CurrentURL(ctx, page)
		if err == nil {
			actual = url
		}
		details := AssertionDetails{Expected: a.Expected, Actual: actual, Selector: a.Selector, AssertionType: a.Type}
		if strings.Contains(actual, a.Expected) {
			return AssertionDetails{}, nil
		}
		return details, fmt.Errorf("url %q does not contain %q", actual, a.Expected)

	case AssertionElementCount:
		var count int
		script := fmt.Sprintf("document.querySelectorAll(%q).length", a.Selector)
		_ = drv.Evaluate(ctx, page, script, &count)
		actual = strconv.Itoa(count)

	case AssertionAttributeValue:
		script := fmt.Sprintf("document.querySelector(%q)?.getAttribute(\"value\") ?? \"\"", a.Selector)
		_ = drv.Evaluate(ctx, page, script, &actual)

	default:
		actual = ""
	}

	details := AssertionDetails{Expected: a.Expected, Actual: actual, Selector: a.Selector, AssertionType: a.Type}
	if actual == a.Expected {
		return AssertionDetails{}, nil
	}
	return details, fmt.Errorf("expected %q, got %q", a.Expected, actual)
}

// Package execution runs generated test cases against isolated browser
// worker processes and reports their outcomes, spec §4.10–§4.14.
package execution

import "time"

// AssertionType selects which evaluator checks a step's outcome.
type AssertionType string

const (
	AssertionVisibility     AssertionType = "visibility"
	AssertionTextContent    AssertionType = "text-content"
	AssertionURLMatch       AssertionType = "url-match"
	AssertionElementCount   AssertionType = "element-count"
	AssertionAttributeValue AssertionType = "attribute-value"
)

// StepAction selects what a TestStep does to the page.
type StepAction string

const (
	ActionClick      StepAction = "click"
	ActionNavigation StepAction = "navigation"
	ActionFormSubmit StepAction = "form-submit"
)

// TestAssertion checks one condition after a step runs.
type TestAssertion struct {
	Type     AssertionType `json:"type"`
	Selector string        `json:"selector"`
	Expected string        `json:"expected"`
}

// TestStep is one action plus the assertions checked after it runs.
type TestStep struct {
	Action     StepAction      `json:"action"`
	Selector   string          `json:"selector"`
	Assertions []TestAssertion `json:"assertions,omitempty"`
}

// TestCase is one generated or imported scenario.
type TestCase struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Suite    string     `json:"suite"`
	BaseURL  string     `json:"baseUrl,omitempty"`
	Setup    []TestStep `json:"setup,omitempty"`
	Steps    []TestStep `json:"steps"`
	Teardown []TestStep `json:"teardown,omitempty"`
}

// Status is the terminal disposition of a TestResult.
type Status string

const (
	StatusPassed          Status = "passed"
	StatusPassedWithRetry Status = "passed-with-retry"
	StatusFailed          Status = "failed"
	StatusSkipped         Status = "skipped"
)

// AssertionDetails records the failing assertion's expectation versus
// what was actually observed.
type AssertionDetails struct {
	Expected      string        `json:"expected"`
	Actual        string        `json:"actual"`
	Selector      string        `json:"selector"`
	AssertionType AssertionType `json:"assertionType"`
}

// TestError describes why a TestResult failed.
type TestError struct {
	Message          string            `json:"message"`
	AssertionDetails *AssertionDetails `json:"assertionDetails,omitempty"`
}

// TestResult is the outcome of running one TestCase to completion.
type TestResult struct {
	TestID         string     `json:"testId"`
	Name           string     `json:"name"`
	Suite          string     `json:"suite"`
	Status         Status     `json:"status"`
	RetryCount     int        `json:"retryCount"`
	DurationMs     int64      `json:"durationMs"`
	ScreenshotPath string     `json:"screenshotPath,omitempty"`
	LogPath        string     `json:"logPath,omitempty"`
	ArtifactDir    string     `json:"artifactDir,omitempty"`
	Error          *TestError `json:"error,omitempty"`
}

// FailedRequest is one intercepted network response with status >= 400.
type FailedRequest struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

// RunnerConfig tunes one worker's browser and assertion timeouts.
type RunnerConfig struct {
	BrowserType          string        `json:"browserType"`
	Headless             bool          `json:"headless"`
	NavigationTimeout    time.Duration `json:"navigationTimeout"`
	AssertionWaitTimeout time.Duration `json:"assertionWaitTimeout"`
	OutputDir            string        `json:"outputDir"`
}

// DefaultAssertionWaitTimeout is the wait-for-selector budget spec
// §4.11 assigns to the visibility evaluator.
const DefaultAssertionWaitTimeout = 5000 * time.Millisecond

// RunResult is the ordered outcome of one scheduler run, spec §4.12.
type RunResult struct {
	Results []TestResult `json:"results"`
}

package execution

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mateoblack/sentinel/internal/driver/drivertest"
)

func newTestDriver(t *testing.T) *drivertest.Fake {
	return drivertest.New(map[string]drivertest.PageSpec{
		"http://example.com/": {
			URL:             "http://example.com/",
			Title:           "Home",
			Selectors:       map[string]bool{"#welcome": true},
			TextContent:     map[string]string{"#welcome": "Welcome back"},
			AttributeValues: map[string]string{"#status": "active"},
			ElementCounts:   map[string]int{".item": 3},
		},
	})
}

func TestExecutePassingTestCase(t *testing.T) {
	outputDir := t.TempDir()
	drv := newTestDriver(t)
	page, _ := drv.CreatePage(context.Background(), "ctx-1")

	tc := TestCase{
		ID: "tc-1", Name: "welcome banner visible", Suite: "smoke",
		BaseURL: "http://example.com/",
		Steps: []TestStep{
			{Action: ActionClick, Selector: "#welcome", Assertions: []TestAssertion{
				{Type: AssertionVisibility, Selector: "#welcome", Expected: "true"},
				{Type: AssertionTextContent, Selector: "#welcome", Expected: "Welcome back"},
				{Type: AssertionElementCount, Selector: ".item", Expected: "3"},
				{Type: AssertionAttributeValue, Selector: "#status", Expected: "active"},
			}},
		},
	}
	cfg := RunnerConfig{OutputDir: outputDir, AssertionWaitTimeout: 200 * time.Millisecond}

	result := Execute(context.Background(), tc, cfg, drv, page, nil, nil)

	if result.Status != StatusPassed {
		t.Fatalf("expected passed, got %s (%+v)", result.Status, result.Error)
	}
}

func TestExecuteFailingAssertionCapturesArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	drv := newTestDriver(t)
	page, _ := drv.CreatePage(context.Background(), "ctx-1")

	tc := TestCase{
		ID: "tc-2", Name: "wrong text", Suite: "smoke",
		BaseURL: "http://example.com/",
		Steps: []TestStep{
			{Assertions: []TestAssertion{
				{Type: AssertionTextContent, Selector: "#welcome", Expected: "Goodbye"},
			}},
		},
	}
	cfg := RunnerConfig{OutputDir: outputDir}

	result := Execute(context.Background(), tc, cfg, drv, page, []string{"console error 1"}, nil)

	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if result.Error == nil || result.Error.AssertionDetails == nil {
		t.Fatal("expected assertion details on failure")
	}
	if result.Error.AssertionDetails.Expected != "Goodbye" || result.Error.AssertionDetails.Actual != "Welcome back" {
		t.Fatalf("unexpected assertion details: %+v", result.Error.AssertionDetails)
	}
	if result.ScreenshotPath == "" {
		t.Fatal("expected a screenshot path on failure")
	}
	if _, err := os.Stat(result.ScreenshotPath); err != nil {
		t.Fatalf("expected screenshot file to exist: %v", err)
	}
	if result.LogPath == "" {
		t.Fatal("expected a console log path when console errors were present")
	}
}

func TestExecuteURLMatchAssertion(t *testing.T) {
	outputDir := t.TempDir()
	drv := newTestDriver(t)
	page, _ := drv.CreatePage(context.Background(), "ctx-1")

	tc := TestCase{
		ID: "tc-3", Name: "on homepage", Suite: "smoke",
		BaseURL: "http://example.com/",
		Steps: []TestStep{
			{Assertions: []TestAssertion{{Type: AssertionURLMatch, Expected: "example.com"}}},
		},
	}
	cfg := RunnerConfig{OutputDir: outputDir}

	result := Execute(context.Background(), tc, cfg, drv, page, nil, nil)
	if result.Status != StatusPassed {
		t.Fatalf("expected passed, got %s (%+v)", result.Status, result.Error)
	}
}

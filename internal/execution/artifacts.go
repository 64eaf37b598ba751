package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mateoblack/sentinel/internal/driver"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeFilename replaces every character outside [a-zA-Z0-9_-] with
// "-", for the ad-hoc failure-screenshot filenames spec §4.14 names
// (outside the per-test artifact directory, which is keyed by suite
// and testId directly).
func SanitizeFilename(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "-")
}

// Artifacts is the directory, screenshot, and log path bundle collected
// for one failing test.
type Artifacts struct {
	ScreenshotPath string
	LogPath        string
	ArtifactDir    string
}

// CreateArtifactDir ensures outputDir/suite/testId/ exists and returns
// its path.
func CreateArtifactDir(outputDir, suite, testID string) (string, error) {
	dir := filepath.Join(outputDir, suite, testID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("execution: creating artifact dir %s: %w", dir, err)
	}
	return dir, nil
}

// CaptureScreenshot writes the engine's screenshot buffer to
// dir/failure-screenshot.png.
func CaptureScreenshot(ctx context.Context, drv driver.Driver, page driver.Page, dir string) (string, error) {
	data, err := drv.Screenshot(ctx, page, driver.ScreenshotOptions{FullPage: true})
	if err != nil {
		return "", fmt.Errorf("execution: capturing screenshot: %w", err)
	}
	path := filepath.Join(dir, "failure-screenshot.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("execution: writing screenshot %s: %w", path, err)
	}
	return path, nil
}

// CaptureConsoleLogs writes errors newline-joined to dir/console.log,
// or returns an empty path if there are no errors to write.
func CaptureConsoleLogs(dir string, errors []string) (string, error) {
	if len(errors) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, "console.log")
	if err := os.WriteFile(path, []byte(strings.Join(errors, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("execution: writing console log %s: %w", path, err)
	}
	return path, nil
}

// CollectArtifacts bundles a screenshot and console log for one failed
// test case into outputDir/suite/testId/.
func CollectArtifacts(ctx context.Context, drv driver.Driver, page driver.Page, outputDir, suite, testID string, consoleErrors []string) (Artifacts, error) {
	dir, err := CreateArtifactDir(outputDir, suite, testID)
	if err != nil {
		return Artifacts{}, err
	}

	screenshotPath, err := CaptureScreenshot(ctx, drv, page, dir)
	if err != nil {
		return Artifacts{}, err
	}

	logPath, err := CaptureConsoleLogs(dir, consoleErrors)
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{ScreenshotPath: screenshotPath, LogPath: logPath, ArtifactDir: dir}, nil
}

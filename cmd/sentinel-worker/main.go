// Command sentinel-worker is the child process spawned by the
// scheduler, spec §4.13. It reads execute messages from stdin and
// writes result or error messages to stdout as newline-delimited JSON;
// each execute message gets its own browser session, opened before the
// test and closed after it.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mateoblack/sentinel/internal/driver"
	"github.com/mateoblack/sentinel/internal/driver/cdp"
	"github.com/mateoblack/sentinel/internal/execution"
)

func main() {
	endpoint := os.Getenv("SENTINEL_CDP_ENDPOINT")
	if endpoint == "" {
		endpoint = "ws://127.0.0.1:9222/devtools/browser"
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		var msg execution.WorkerMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Type != "execute" || msg.TestCase == nil || msg.Config == nil {
			continue
		}
		reply := handle(ctx, endpoint, *msg.TestCase, *msg.Config)
		_ = out.Encode(reply)
	}
}

// handle runs exactly one test case through a freshly launched
// browser, swallowing cleanup errors per spec §4.13 step 8.
func handle(ctx context.Context, endpoint string, tc execution.TestCase, cfg execution.RunnerConfig) (reply execution.WorkerMessage) {
	defer func() {
		if r := recover(); r != nil {
			reply = execution.WorkerMessage{Type: "error", Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	drv := cdp.New(endpoint)
	if err := drv.Launch(ctx, cfg.BrowserType, cfg.Headless); err != nil {
		return execution.WorkerMessage{Type: "error", Error: fmt.Sprintf("launching browser: %v", err)}
	}
	defer func() { _ = drv.Close(ctx) }()

	browserCtx, err := drv.CreateContext(ctx)
	if err != nil {
		return execution.WorkerMessage{Type: "error", Error: fmt.Sprintf("creating context: %v", err)}
	}
	defer func() { _ = drv.CloseContext(ctx, browserCtx) }()

	page, err := drv.CreatePage(ctx, browserCtx)
	if err != nil {
		return execution.WorkerMessage{Type: "error", Error: fmt.Sprintf("creating page: %v", err)}
	}
	defer func() { _ = drv.ClosePage(ctx, page) }()

	var failedRequests []execution.FailedRequest
	_ = drv.OnResponse(ctx, browserCtx, func(resp driver.NetworkResponse) {
		if resp.StatusCode >= 400 {
			failedRequests = append(failedRequests, execution.FailedRequest{URL: resp.URL, StatusCode: resp.StatusCode})
		}
	})

	var consoleErrors []string // reserved for future console capture, spec §4.13 step 4

	result := execution.Execute(ctx, tc, cfg, drv, page, consoleErrors, failedRequests)
	return execution.WorkerMessage{Type: "result", Result: &result}
}

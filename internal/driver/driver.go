// Package driver defines the browser-driver contract that the
// exploration and execution engines depend on. The driver itself
// (launching a real browser, clicking, evaluating scripts,
// screenshotting) is an external collaborator; this package specifies
// only its interface, per spec §6.
package driver

import (
	"context"
	"time"
)

// Page and Context are opaque handles owned by the driver
// implementation. Callers never inspect their contents.
type Page string
type Context string

// NavigateOptions tunes a single navigation call.
type NavigateOptions struct {
	Timeout time.Duration
}

// WaitOptions tunes a single waitForSelector call.
type WaitOptions struct {
	Timeout time.Duration
}

// ScreenshotOptions tunes a single screenshot capture.
type ScreenshotOptions struct {
	FullPage bool
}

// NetworkResponse is a single intercepted HTTP response.
type NetworkResponse struct {
	URL        string
	StatusCode int
}

// ResponseHandler is invoked for every response observed on a context
// after OnResponse is registered.
type ResponseHandler func(NetworkResponse)

// Driver is the full browser-driver contract. Implementations own
// process lifecycle, page/context handles, and in-page script
// evaluation. Exploration owns exactly one page; a worker owns exactly
// one browser for its entire lifetime.
type Driver interface {
	Launch(ctx context.Context, browserType string, headless bool) error
	Close(ctx context.Context) error

	CreateContext(ctx context.Context) (Context, error)
	CloseContext(ctx context.Context, c Context) error
	CreatePage(ctx context.Context, c Context) (Page, error)
	ClosePage(ctx context.Context, p Page) error

	Navigate(ctx context.Context, p Page, url string, opts NavigateOptions) error
	CurrentURL(ctx context.Context, p Page) (string, error)

	Click(ctx context.Context, p Page, selector string) error
	Type(ctx context.Context, p Page, selector, text string) error
	WaitForSelector(ctx context.Context, p Page, selector string, opts WaitOptions) (bool, error)

	// Evaluate runs script in the page and unmarshals its JSON result
	// into out (a pointer).
	Evaluate(ctx context.Context, p Page, script string, out any) error

	Screenshot(ctx context.Context, p Page, opts ScreenshotOptions) ([]byte, error)

	OnResponse(ctx context.Context, c Context, handler ResponseHandler) error
	RemoveInterceptors(ctx context.Context, c Context) error
	ExportHAR(ctx context.Context, c Context) ([]byte, error)
}

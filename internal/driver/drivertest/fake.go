// Package drivertest provides an in-memory driver.Driver for exercising
// the exploration and execution engines without a real browser.
package drivertest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/mateoblack/sentinel/internal/driver"
)

// PageSpec is one page in a Fake site map.
type PageSpec struct {
	URL             string
	Title           string
	Body            string // document.body.innerHTML.length proxy
	DOM             json.RawMessage
	Links           []string // outgoing hrefs, resolved by exploration via the extracted DOM instead
	Selectors       map[string]bool
	TextContent     map[string]string // selector -> textContent, for assertion evaluation
	AttributeValues map[string]string // selector -> "value" attribute
	ElementCounts   map[string]int    // selector -> querySelectorAll length
}

var (
	selectorArg     = regexp.MustCompile(`document\.querySelector(?:All)?\(\s*"([^"]*)"\s*\)`)
	isLengthQuery   = regexp.MustCompile(`\.length$`)
	isAttributeRead = regexp.MustCompile(`getAttribute`)
)

// Fake is a scripted driver: navigation looks up a PageSpec by URL and
// every other call operates against the currently-navigated page.
type Fake struct {
	mu      sync.Mutex
	Sites   map[string]PageSpec
	current map[driver.Page]string // page -> current URL
	nextID  int
	Clicks  []string
}

func New(sites map[string]PageSpec) *Fake {
	return &Fake{Sites: sites, current: make(map[driver.Page]string)}
}

func (f *Fake) Launch(ctx context.Context, browserType string, headless bool) error { return nil }
func (f *Fake) Close(ctx context.Context) error                                     { return nil }

func (f *Fake) CreateContext(ctx context.Context) (driver.Context, error) {
	return driver.Context("ctx-1"), nil
}
func (f *Fake) CloseContext(ctx context.Context, c driver.Context) error { return nil }

func (f *Fake) CreatePage(ctx context.Context, c driver.Context) (driver.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := driver.Page(fmt.Sprintf("page-%d", f.nextID))
	f.current[p] = ""
	return p, nil
}
func (f *Fake) ClosePage(ctx context.Context, p driver.Page) error { return nil }

func (f *Fake) Navigate(ctx context.Context, p driver.Page, url string, opts driver.NavigateOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Sites[url]; !ok {
		return fmt.Errorf("drivertest: no such page %q", url)
	}
	f.current[p] = url
	return nil
}

func (f *Fake) CurrentURL(ctx context.Context, p driver.Page) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current[p], nil
}

func (f *Fake) Click(ctx context.Context, p driver.Page, selector string) error {
	f.mu.Lock()
	f.Clicks = append(f.Clicks, selector)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Type(ctx context.Context, p driver.Page, selector, text string) error { return nil }

func (f *Fake) WaitForSelector(ctx context.Context, p driver.Page, selector string, opts driver.WaitOptions) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	site := f.Sites[f.current[p]]
	return site.Selectors[selector], nil
}

func (f *Fake) Evaluate(ctx context.Context, p driver.Page, script string, out any) error {
	f.mu.Lock()
	site := f.Sites[f.current[p]]
	f.mu.Unlock()

	switch script {
	case "document.body.innerHTML.length":
		return assignInt(out, len(site.Body))
	case "document.title":
		return assignString(out, site.Title)
	case "__sentinel_extract_dom__":
		if out == nil {
			return nil
		}
		return json.Unmarshal(site.DOM, out)
	}

	match := selectorArg.FindStringSubmatch(script)
	if match == nil {
		return nil
	}
	selector := match[1]

	switch {
	case isLengthQuery.MatchString(script):
		return assignInt(out, site.ElementCounts[selector])
	case isAttributeRead.MatchString(script):
		return assignString(out, site.AttributeValues[selector])
	default:
		return assignString(out, site.TextContent[selector])
	}
}

func assignInt(out any, v int) error {
	ptr, ok := out.(*int)
	if !ok {
		return fmt.Errorf("drivertest: expected *int, got %T", out)
	}
	*ptr = v
	return nil
}

func assignString(out any, v string) error {
	ptr, ok := out.(*string)
	if !ok {
		return fmt.Errorf("drivertest: expected *string, got %T", out)
	}
	*ptr = v
	return nil
}

func (f *Fake) Screenshot(ctx context.Context, p driver.Page, opts driver.ScreenshotOptions) ([]byte, error) {
	return []byte("fake-png-bytes"), nil
}

func (f *Fake) OnResponse(ctx context.Context, c driver.Context, handler driver.ResponseHandler) error {
	return nil
}
func (f *Fake) RemoveInterceptors(ctx context.Context, c driver.Context) error { return nil }
func (f *Fake) ExportHAR(ctx context.Context, c driver.Context) ([]byte, error) {
	return []byte("{}"), nil
}

var _ driver.Driver = (*Fake)(nil)

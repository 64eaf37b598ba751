// Package cdp implements driver.Driver over a Chrome DevTools Protocol
// websocket endpoint, the transport most browsers expose for remote
// automation. It is a thin JSON-RPC client: one connection per driver
// instance, with replies matched to commands by id, so several commands
// may be outstanding at once.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mateoblack/sentinel/internal/driver"
)

// command is a CDP request envelope.
type command struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// reply is a CDP response envelope; Result is left raw so each call
// site can unmarshal into the shape it expects.
type reply struct {
	ID     int64           `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Driver is a driver.Driver backed by a single CDP websocket
// connection. Safe for concurrent use by a single worker's goroutines.
type Driver struct {
	endpoint string

	mu       sync.Mutex
	conn     *websocket.Conn
	nextID   int64
	pending  map[int64]chan reply
	handlers []driver.ResponseHandler
}

// New returns a Driver that will dial endpoint on Launch.
func New(endpoint string) *Driver {
	return &Driver{endpoint: endpoint, pending: make(map[int64]chan reply)}
}

func (d *Driver) Launch(ctx context.Context, browserType string, headless bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.endpoint, nil)
	if err != nil {
		return fmt.Errorf("cdp: dial %s: %w", d.endpoint, err)
	}
	d.conn = conn
	go d.readLoop()
	return nil
}

func (d *Driver) readLoop() {
	for {
		_, data, err := d.conn.ReadMessage()
		if err != nil {
			d.mu.Lock()
			for _, ch := range d.pending {
				close(ch)
			}
			d.pending = map[int64]chan reply{}
			d.mu.Unlock()
			return
		}
		var r reply
		if err := json.Unmarshal(data, &r); err != nil {
			// Malformed frame from the remote end; nothing is waiting on
			// it, so it is dropped the same way a skipped exploration
			// iteration is: best-effort, not fatal.
			continue
		}

		if r.Method == "Network.responseReceived" {
			d.dispatchResponse(r.Params)
			continue
		}

		d.mu.Lock()
		ch, ok := d.pending[r.ID]
		if ok {
			delete(d.pending, r.ID)
		}
		d.mu.Unlock()
		if ok {
			ch <- r
			close(ch)
		}
	}
}

func (d *Driver) dispatchResponse(params json.RawMessage) {
	var event struct {
		Response struct {
			URL    string `json:"url"`
			Status int    `json:"status"`
		} `json:"response"`
	}
	if err := json.Unmarshal(params, &event); err != nil {
		return
	}

	d.mu.Lock()
	handlers := append([]driver.ResponseHandler(nil), d.handlers...)
	d.mu.Unlock()

	resp := driver.NetworkResponse{URL: event.Response.URL, StatusCode: event.Response.Status}
	for _, h := range handlers {
		h(resp)
	}
}

func (d *Driver) call(ctx context.Context, method string, params map[string]any, out any) error {
	id := atomic.AddInt64(&d.nextID, 1)
	ch := make(chan reply, 1)

	d.mu.Lock()
	d.pending[id] = ch
	conn := d.conn
	d.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("cdp: driver not launched")
	}

	payload, err := json.Marshal(command{ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("cdp: marshal command %s: %w", method, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("cdp: send command %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r, ok := <-ch:
		if !ok {
			return fmt.Errorf("cdp: connection closed while waiting for %s", method)
		}
		if r.Error != nil {
			return fmt.Errorf("cdp: %s failed: %s", method, r.Error.Message)
		}
		if out == nil || len(r.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("cdp: unmarshal %s result: %w", method, err)
		}
		return nil
	}
}

func (d *Driver) Close(ctx context.Context) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (d *Driver) CreateContext(ctx context.Context) (driver.Context, error) {
	var out struct {
		BrowserContextID string `json:"browserContextId"`
	}
	if err := d.call(ctx, "Target.createBrowserContext", nil, &out); err != nil {
		return "", err
	}
	return driver.Context(out.BrowserContextID), nil
}

func (d *Driver) CloseContext(ctx context.Context, c driver.Context) error {
	return d.call(ctx, "Target.disposeBrowserContext", map[string]any{"browserContextId": string(c)}, nil)
}

func (d *Driver) CreatePage(ctx context.Context, c driver.Context) (driver.Page, error) {
	var out struct {
		TargetID string `json:"targetId"`
	}
	params := map[string]any{"url": "about:blank", "browserContextId": string(c)}
	if err := d.call(ctx, "Target.createTarget", params, &out); err != nil {
		return "", err
	}
	return driver.Page(out.TargetID), nil
}

func (d *Driver) ClosePage(ctx context.Context, p driver.Page) error {
	return d.call(ctx, "Target.closeTarget", map[string]any{"targetId": string(p)}, nil)
}

func (d *Driver) Navigate(ctx context.Context, p driver.Page, url string, opts driver.NavigateOptions) error {
	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return d.call(callCtx, "Page.navigate", map[string]any{"targetId": string(p), "url": url}, nil)
}

func (d *Driver) CurrentURL(ctx context.Context, p driver.Page) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := d.call(ctx, "Target.getTargetInfo", map[string]any{"targetId": string(p)}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (d *Driver) Click(ctx context.Context, p driver.Page, selector string) error {
	return d.call(ctx, "Input.dispatchClick", map[string]any{"targetId": string(p), "selector": selector}, nil)
}

func (d *Driver) Type(ctx context.Context, p driver.Page, selector, text string) error {
	return d.call(ctx, "Input.dispatchType", map[string]any{"targetId": string(p), "selector": selector, "text": text}, nil)
}

func (d *Driver) WaitForSelector(ctx context.Context, p driver.Page, selector string, opts driver.WaitOptions) (bool, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	deadline := time.Now().Add(timeout)
	for {
		var out struct {
			Present bool `json:"present"`
		}
		if err := d.call(ctx, "DOM.querySelector", map[string]any{"targetId": string(p), "selector": selector}, &out); err != nil {
			return false, err
		}
		if out.Present {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (d *Driver) Evaluate(ctx context.Context, p driver.Page, script string, out any) error {
	var wrapped struct {
		Result json.RawMessage `json:"result"`
	}
	params := map[string]any{"targetId": string(p), "expression": script, "returnByValue": true}
	if err := d.call(ctx, "Runtime.evaluate", params, &wrapped); err != nil {
		return err
	}
	if out == nil || len(wrapped.Result) == 0 {
		return nil
	}
	return json.Unmarshal(wrapped.Result, out)
}

func (d *Driver) Screenshot(ctx context.Context, p driver.Page, opts driver.ScreenshotOptions) ([]byte, error) {
	var out struct {
		Data []byte `json:"data"`
	}
	params := map[string]any{"targetId": string(p), "fullPage": opts.FullPage}
	if err := d.call(ctx, "Page.captureScreenshot", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (d *Driver) OnResponse(ctx context.Context, c driver.Context, handler driver.ResponseHandler) error {
	d.mu.Lock()
	d.handlers = append(d.handlers, handler)
	d.mu.Unlock()
	return d.call(ctx, "Network.enable", map[string]any{"browserContextId": string(c)}, nil)
}

func (d *Driver) RemoveInterceptors(ctx context.Context, c driver.Context) error {
	d.mu.Lock()
	d.handlers = nil
	d.mu.Unlock()
	return d.call(ctx, "Network.disable", map[string]any{"browserContextId": string(c)}, nil)
}

func (d *Driver) ExportHAR(ctx context.Context, c driver.Context) ([]byte, error) {
	var out struct {
		HAR []byte `json:"har"`
	}
	if err := d.call(ctx, "Network.getHAR", map[string]any{"browserContextId": string(c)}, &out); err != nil {
		return nil, err
	}
	return out.HAR, nil
}

var _ driver.Driver = (*Driver)(nil)

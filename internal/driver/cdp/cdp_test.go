package cdp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mateoblack/sentinel/internal/driver"
)

// fakeCDPServer answers a fixed set of CDP methods with canned results,
// just enough to exercise Driver's request/reply framing end to end.
func fakeCDPServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd command
			if err := json.Unmarshal(data, &cmd); err != nil {
				continue
			}

			var result json.RawMessage
			switch cmd.Method {
			case "Target.createBrowserContext":
				result = json.RawMessage(`{"browserContextId":"ctx-1"}`)
			case "Target.createTarget":
				result = json.RawMessage(`{"targetId":"page-1"}`)
			case "Page.navigate":
				result = json.RawMessage(`{}`)
			case "Target.getTargetInfo":
				result = json.RawMessage(`{"url":"https://example.com/landed"}`)
			default:
				result = json.RawMessage(`{}`)
			}

			reply := reply{ID: cmd.ID, Result: result}
			payload, _ := json.Marshal(reply)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}))
}

func TestDriver_LaunchNavigateRoundTrip(t *testing.T) {
	srv := fakeCDPServer(t)
	defer srv.Close()

	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	d := New(endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Launch(ctx, "chromium", true); err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer d.Close(ctx)

	browserCtx, err := d.CreateContext(ctx)
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	if browserCtx != "ctx-1" {
		t.Errorf("expected ctx-1, got %q", browserCtx)
	}

	page, err := d.CreatePage(ctx, browserCtx)
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if page != "page-1" {
		t.Errorf("expected page-1, got %q", page)
	}

	if err := d.Navigate(ctx, page, "https://example.com/", driver.NavigateOptions{}); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	url, err := d.CurrentURL(ctx, page)
	if err != nil {
		t.Fatalf("current url: %v", err)
	}
	if url != "https://example.com/landed" {
		t.Errorf("expected landed url, got %q", url)
	}
}

func TestDriver_CallWithoutLaunchFails(t *testing.T) {
	d := New("ws://unused")
	_, err := d.CreateContext(context.Background())
	if err == nil {
		t.Fatal("expected error calling before Launch")
	}
}

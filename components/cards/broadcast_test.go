package cards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBroadcastHookDeliversToSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()

	sent := CardEvent{DashboardID: "dash-1", CardID: "card-a", State: StateRendered, Reason: "refresh"}
	if err := hook.CardUpdated(context.Background(), sent); err != nil {
		t.Fatalf("CardUpdated: %v", err)
	}

	select {
	case got := <-events:
		if got != sent {
			t.Fatalf("received %+v, want %+v", got, sent)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := hook.CardUpdated(ctx, CardEvent{CardID: "card-a"}); err != nil {
			t.Fatalf("CardUpdated %d: %v", i, err)
		}
	}

	received := 0
	for {
		select {
		case <-events:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received >= 20 {
		t.Fatalf("expected a bounded backlog, received %d", received)
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	cancel()

	if _, ok := <-events; ok {
		t.Fatal("channel should be closed after cancel")
	}
	// Double cancel is a no-op.
	cancel()

	if err := hook.CardUpdated(context.Background(), CardEvent{CardID: "card-a"}); err != nil {
		t.Fatalf("CardUpdated after cancel: %v", err)
	}
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/dashboard/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hook.ServeSSE(rec, req)
	}()

	// Wait for the handler to subscribe before publishing.
	deadline := time.Now().Add(time.Second)
	for {
		hook.mu.RLock()
		subs := len(hook.subs)
		hook.mu.RUnlock()
		if subs == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	event := CardEvent{DashboardID: "dash-1", CardID: "card-a", State: StateRendered}
	if err := hook.CardUpdated(context.Background(), event); err != nil {
		t.Fatalf("CardUpdated: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("body missing SSE framing: %q", body)
	}
	var got CardEvent
	payload := strings.TrimPrefix(strings.Split(body, "\n")[0], "data: ")
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.CardID != "card-a" {
		t.Fatalf("event card id = %q", got.CardID)
	}
}

func TestBroadcastHookServeWebSocketRejectsPlainRequest(t *testing.T) {
	hook := NewBroadcastHook()

	req := httptest.NewRequest("GET", "/dashboard/ws", nil)
	rec := httptest.NewRecorder()
	hook.ServeWebSocket(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	// The upgrader writes the handshake error itself; the handler must not
	// write a second response on top of it.
	body := strings.TrimSpace(rec.Body.String())
	if lines := strings.Split(body, "\n"); len(lines) != 1 {
		t.Fatalf("expected a single handshake error line, got %d: %q", len(lines), body)
	}

	hook.mu.Lock()
	subs := len(hook.subs)
	hook.mu.Unlock()
	if subs != 0 {
		t.Fatalf("failed upgrade leaked %d subscriber(s)", subs)
	}
}

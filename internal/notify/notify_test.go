package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestWebhook_PostsPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := Webhook{URL: srv.URL, Logger: zerolog.Nop()}
	wh.Notify(context.Background(), "Fetch failed", "device source unreachable", SeverityError)

	if got.Title != "Fetch failed" {
		t.Fatalf("expected title, got %q", got.Title)
	}
	if got.Severity != "error" {
		t.Fatalf("expected error severity, got %q", got.Severity)
	}
	if got.At == "" {
		t.Fatalf("expected timestamp")
	}
}

func TestWebhook_UnreachableDoesNotPanic(t *testing.T) {
	wh := Webhook{URL: "http://127.0.0.1:1", Logger: zerolog.Nop()}
	wh.Notify(context.Background(), "t", "d", SeverityWarning)
}

func TestWebhook_EmptyURLIsNoop(t *testing.T) {
	Webhook{Logger: zerolog.Nop()}.Notify(context.Background(), "t", "d", SeverityInfo)
}

func TestMulti_FansOut(t *testing.T) {
	count := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
	}))
	defer srv.Close()

	m := Multi{
		Log{Logger: zerolog.Nop()},
		Webhook{URL: srv.URL, Logger: zerolog.Nop()},
	}
	m.Notify(context.Background(), "t", "d", SeverityInfo)

	if count != 1 {
		t.Fatalf("expected webhook hit once, got %d", count)
	}
}

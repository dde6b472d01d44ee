package devicesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"netatlas/topo-core/internal/topology"
)

func TestHTTP_Devices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices" {
			t.Errorf("expected /devices, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"gw","name":"gateway","type":"router","status":"online"},
			{"id":"s1","name":"switch-1","type":"switch","status":"offline"}
		]`))
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL+"/", nil)
	devices, err := src.Devices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].ID != "gw" || devices[0].Type != "router" {
		t.Fatalf("unexpected first device: %+v", devices[0])
	}
	if devices[1].Status != "offline" {
		t.Fatalf("unexpected second device: %+v", devices[1])
	}
}

func TestHTTP_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL, nil).Devices(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestHTTP_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops":`))
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL, nil).Devices(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStatic_ReturnsCopy(t *testing.T) {
	src := Static{List: []topology.Device{{ID: "gw", Type: "router", Status: "online"}}}
	a, _ := src.Devices(context.Background())
	a[0].Status = "offline"

	b, _ := src.Devices(context.Background())
	if b[0].Status != "online" {
		t.Fatalf("static source leaked its backing slice")
	}
}

package probe

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"netatlas/topo-core/internal/topology"
)

func TestClassifyType(t *testing.T) {
	cases := map[string]string{
		"Cisco IOS Software, Router":      "router",
		"ProCurve J9028A Switch 1800-24G": "switch",
		"UniFi Wireless AP firmware 6.2":  "access-point",
		"Linux files 5.15.0 x86_64":       "server",
		"Miscellaneous embedded thing":    "",
		"":                                "",
		"Home GATEWAY broadband device":   "router",
	}
	for descr, want := range cases {
		if got := ClassifyType(descr); got != want {
			t.Fatalf("ClassifyType(%q) = %q, want %q", descr, got, want)
		}
	}
}

func TestHostLabel(t *testing.T) {
	if got := hostLabel("router.home.arpa."); got != "router" {
		t.Fatalf("expected router, got %q", got)
	}
	if got := hostLabel("bare"); got != "bare" {
		t.Fatalf("expected bare, got %q", got)
	}
	if got := hostLabel(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestEnrich_DisabledPassthrough(t *testing.T) {
	p := New(zerolog.Nop(), Config{})
	in := []topology.Device{{ID: "a", Addr: "192.0.2.1"}}
	out := p.Enrich(context.Background(), in)
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("expected passthrough, got %+v", out)
	}
}

func TestEnrich_SkipsAddresslessDevices(t *testing.T) {
	// SNMP enabled but no device has an address, so no probe is attempted
	// and the snapshot passes through unchanged.
	p := New(zerolog.Nop(), Config{SNMPEnabled: true})
	in := []topology.Device{
		{ID: "a", Name: "known", Type: "router", Status: "online"},
		{ID: "b", Status: "offline"},
	}
	out := p.Enrich(context.Background(), in)
	if len(out) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("expected unchanged devices, got %+v", out)
	}
}

package topology

import "testing"

func TestColorFor_OfflineAlwaysAlert(t *testing.T) {
	for _, typ := range []string{"router", "switch", "server", "access-point", "toaster", ""} {
		if got := ColorFor("offline", typ); got != ColorAlert {
			t.Fatalf("offline %q: expected alert color, got %s", typ, got)
		}
	}
}

func TestColorFor_TypePalette(t *testing.T) {
	cases := map[string]string{
		"router":       ColorRouter,
		"Switch":       ColorSwitch,
		"SERVER":       ColorServer,
		"access-point": ColorAccessPoint,
	}
	for typ, want := range cases {
		if got := ColorFor("online", typ); got != want {
			t.Fatalf("online %q: expected %s, got %s", typ, want, got)
		}
	}
}

func TestColorFor_UnknownTypeNeutral(t *testing.T) {
	if got := ColorFor("online", "fridge"); got != ColorNeutral {
		t.Fatalf("expected neutral fallback, got %s", got)
	}
	if got := ColorFor("online", ""); got != ColorNeutral {
		t.Fatalf("expected neutral fallback for empty type, got %s", got)
	}
}

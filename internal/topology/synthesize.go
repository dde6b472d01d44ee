package topology

import (
	"math/rand"
	"strings"
)

// IconResolver maps a lowercased device type to a glyph name. A type the
// resolver does not know must return ok=false, never an error.
type IconResolver func(typeLower string) (string, bool)

// HubPolicy picks the index of the device every other device connects to.
// Returning an index outside [0, len) falls back to 0.
type HubPolicy func(devices []Device) int

// FirstDeviceHub preserves the historical rule: the first device in the
// inventory snapshot is the hub.
func FirstDeviceHub([]Device) int { return 0 }

// PreferTypeHub picks the first device of the given type, falling back to the
// first device when none matches.
func PreferTypeHub(deviceType string) HubPolicy {
	want := strings.ToLower(strings.TrimSpace(deviceType))
	return func(devices []Device) int {
		for i, d := range devices {
			if normalizeType(d.Type) == want {
				return i
			}
		}
		return 0
	}
}

// Options tune Synthesize. The zero value is usable: no icons, first-device
// hub, globally seeded randomness, fresh placement per call.
type Options struct {
	Icons IconResolver
	Hub   HubPolicy

	// Rand supplies coordinates when StablePlacement is false. Nil uses the
	// shared math/rand source.
	Rand *rand.Rand

	// StablePlacement derives each node's coordinates from its device id
	// instead of drawing fresh random ones, so positions survive recomputes.
	StablePlacement bool
}

// Synthesize builds a renderable graph from an inventory snapshot.
//
// Nodes mirror the input one-to-one in order. Links are heuristic, not
// discovered: every non-hub device connects to the hub, switches chain in
// input order, and servers attach round-robin across the switches. Link order
// is hub edges, then chain edges, then server edges. An empty snapshot yields
// an empty graph.
func Synthesize(devices []Device, opts Options) Graph {
	g := Graph{Nodes: []Node{}, Links: []Link{}}
	if len(devices) == 0 {
		return g
	}

	place := randomPlacer(opts.Rand)
	if opts.StablePlacement {
		place = stablePlacer()
	}

	for _, d := range devices {
		n := Node{
			ID:     d.ID,
			Name:   d.Name,
			Type:   d.Type,
			Status: d.Status,
			Val:    1,
		}
		if opts.Icons != nil {
			if glyph, ok := opts.Icons(normalizeType(d.Type)); ok {
				n.Icon = glyph
			}
		}
		n.Lat, n.Lng = place(d.ID)
		g.Nodes = append(g.Nodes, n)
	}

	hub := 0
	if opts.Hub != nil {
		if i := opts.Hub(devices); i >= 0 && i < len(devices) {
			hub = i
		}
	}

	for i, d := range devices {
		if i == hub {
			continue
		}
		g.Links = append(g.Links, Link{
			Source:   devices[hub].ID,
			Target:   d.ID,
			Kind:     LinkKindStraight,
			Animated: d.Online(),
		})
	}

	var switches []Device
	for _, d := range devices {
		if normalizeType(d.Type) == TypeSwitch {
			switches = append(switches, d)
		}
	}
	for i := 0; i+1 < len(switches); i++ {
		g.Links = append(g.Links, Link{
			Source:   switches[i].ID,
			Target:   switches[i+1].ID,
			Kind:     LinkKindStraight,
			Animated: switches[i].Online() && switches[i+1].Online(),
		})
	}

	// No switches means no rack to hang servers off; they stay hub-only.
	if len(switches) > 0 {
		serverIdx := 0
		for _, d := range devices {
			if normalizeType(d.Type) != TypeServer {
				continue
			}
			sw := switches[serverIdx%len(switches)]
			g.Links = append(g.Links, Link{
				Source:   d.ID,
				Target:   sw.ID,
				Kind:     LinkKindStraight,
				Animated: d.Online() && sw.Online(),
			})
			serverIdx++
		}
	}

	return g
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

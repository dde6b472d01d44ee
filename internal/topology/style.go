package topology

// Palette used by frontends when coloring nodes. Offline wins over type.
const (
	ColorAlert       = "#e53935"
	ColorRouter      = "#1e88e5"
	ColorSwitch      = "#43a047"
	ColorServer      = "#8e24aa"
	ColorAccessPoint = "#fb8c00"
	ColorNeutral     = "#9e9e9e"
)

// ColorFor returns the display color for a node. Any offline node is the
// alert color regardless of type; an unrecognized online type is neutral.
func ColorFor(status, deviceType string) string {
	if status == StatusOffline {
		return ColorAlert
	}
	switch normalizeType(deviceType) {
	case TypeRouter:
		return ColorRouter
	case TypeSwitch:
		return ColorSwitch
	case TypeServer:
		return ColorServer
	case TypeAccessPoint:
		return ColorAccessPoint
	default:
		return ColorNeutral
	}
}

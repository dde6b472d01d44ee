package topology

// Device is one row of the inventory snapshot a Source hands us. Addr is
// optional and only used by enrichment; the synthesizer never reads it.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Addr   string `json:"addr,omitempty"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

const (
	TypeRouter      = "router"
	TypeSwitch      = "switch"
	TypeServer      = "server"
	TypeAccessPoint = "access-point"
)

// Node is the renderable projection of a Device.
type Node struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Val    int     `json:"val"`
	Icon   string  `json:"icon,omitempty"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Link connects two node ids. Animated is a display hint meaning the link
// represents live connectivity.
type Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Kind     string `json:"kind"`
	Animated bool   `json:"animated"`
}

const LinkKindStraight = "straight"

type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

func (d Device) Online() bool {
	return d.Status == StatusOnline
}

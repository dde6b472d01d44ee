package topology

import (
	"hash/fnv"
	"math/rand"
)

// placer assigns a geographic coordinate to a node id.
// lat is in [-90, 90), lng in [-180, 180).
type placer func(id string) (lat, lng float64)

func randomPlacer(r *rand.Rand) placer {
	f64 := rand.Float64
	if r != nil {
		f64 = r.Float64
	}
	return func(string) (float64, float64) {
		return f64()*180 - 90, f64()*360 - 180
	}
}

// stablePlacer hashes the device id so the same device lands on the same
// coordinate across recomputes.
func stablePlacer() placer {
	return func(id string) (float64, float64) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(id))
		sum := h.Sum64()

		lat := float64(sum>>32) / float64(1<<32)
		lng := float64(sum&0xffffffff) / float64(1<<32)
		return lat*180 - 90, lng*360 - 180
	}
}

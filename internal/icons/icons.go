package icons

import "strings"

// glyphs maps lowercased device types to frontend glyph names.
var glyphs = map[string]string{
	"router":       "mdi-router-wireless",
	"switch":       "mdi-switch",
	"server":       "mdi-server",
	"access-point": "mdi-access-point",
	"firewall":     "mdi-wall",
	"printer":      "mdi-printer",
}

// Resolve maps a lowercased device type to a glyph. Unknown types are not an
// error; the caller renders those without an icon.
func Resolve(typeLower string) (string, bool) {
	g, ok := glyphs[strings.TrimSpace(typeLower)]
	return g, ok
}

// Package profile holds named budget presets for common text channels.
package profile

import (
	"sort"

	"github.com/AnyUserName/b64jpeg/internal/encoder"
)

// Profile is a named encoding budget.
type Profile struct {
	Name        string
	Description string
	Budget      encoder.Budget
}

// DefaultName is used when no profile is requested.
const DefaultName = "default"

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:        "default",
		Description: "no cap; originals pass through untouched",
		Budget:      encoder.Budget{MaxPx: encoder.DefaultMaxPx, QualityFloor: encoder.DefaultQualityFloor},
	},
	"sms": {
		Name:        "sms",
		Description: "20k characters, 800px",
		Budget:      encoder.Budget{CapChars: 20000, MaxPx: 800, QualityFloor: 50},
	},
	"chat": {
		Name:        "chat",
		Description: "60k characters, 1280px",
		Budget:      encoder.Budget{CapChars: 60000, MaxPx: 1280, QualityFloor: 55},
	},
	"tiny": {
		Name:        "tiny",
		Description: "4k characters, 320px, low quality floor",
		Budget:      encoder.Budget{CapChars: 4000, MaxPx: 320, QualityFloor: 30},
	},
}

// Get returns a profile by name and whether it exists. Unknown names fall
// back to the default profile.
func Get(name string) (Profile, bool) {
	if p, ok := profiles[name]; ok {
		return p, true
	}
	return profiles[DefaultName], false
}

// Names lists built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

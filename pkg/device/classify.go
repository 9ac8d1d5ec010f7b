// Package device classifies a requesting device from its user-agent
// string. The classification decides which AR launch mechanism a
// resolved asset view gets.
package device

import "strings"

// Platform is the AR capability class of a device.
type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
	Other   Platform = "other"
)

var iosMarkers = []string{"iPad", "iPhone", "iPod"}

// Classify maps a user-agent string to a platform. It is a total,
// deterministic function: every input maps to exactly one platform.
// The iOS markers are checked before Android; Apple user agents never
// contain "Android", so the ordering only matters for synthetic input.
func Classify(userAgent string) Platform {
	for _, marker := range iosMarkers {
		if strings.Contains(userAgent, marker) {
			return IOS
		}
	}
	if strings.Contains(userAgent, "Android") {
		return Android
	}
	return Other
}

// Parse maps an explicit platform name (e.g. a query parameter
// override) to a Platform. Unknown names report ok=false.
func Parse(name string) (Platform, bool) {
	switch strings.ToLower(name) {
	case "android":
		return Android, true
	case "ios":
		return IOS, true
	case "other":
		return Other, true
	}
	return Other, false
}
